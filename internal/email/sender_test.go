package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/guidepro/guidepro/internal/booking"
)

func testRecord() booking.Record {
	return booking.Record{
		ID:          42,
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "555-1234",
		Hotel:       "Goa",
		Destination: "Goa",
		CheckIn:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		Guests:      2,
	}
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage(testRecord())
	if msg.To != "jane@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if !strings.Contains(msg.Subject, "GP-42") {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{"Hello Jane Doe", "Booking ID: GP-42", "Check-in: 2025-06-01", "Check-out: 2025-06-05", "Guests: 2", "Phone: 555-1234", "Thank you for choosing GuidePro AI."} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
	if strings.Contains(msg.Body, "Hotel:") {
		t.Error("hotel line should be omitted when it equals the destination")
	}
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// mailPayload is the subset of the v3 mail body the tests inspect.
type mailPayload struct {
	Subject          string `json:"subject"`
	Personalizations []struct {
		To []mailAddress `json:"to"`
	} `json:"personalizations"`
	From    mailAddress `json:"from"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestSendGridSenderSuccess(t *testing.T) {
	var got mailPayload
	var auth, path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		method = r.Method
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("sg-key", "bookings@guidepro.test", "GuidePro AI", srv.URL)
	if err := s.SendConfirmation(context.Background(), testRecord()); err != nil {
		t.Fatalf("SendConfirmation: %v", err)
	}
	if auth != "Bearer sg-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if method != http.MethodPost || path != "/v3/mail/send" {
		t.Errorf("request = %s %s", method, path)
	}
	if !strings.Contains(got.Subject, "GP-42") {
		t.Errorf("subject = %q", got.Subject)
	}
	if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "jane@example.com" {
		t.Errorf("personalizations = %+v", got.Personalizations)
	}
	if got.From.Email != "bookings@guidepro.test" || got.From.Name != "GuidePro AI" {
		t.Errorf("from = %+v", got.From)
	}
	if len(got.Content) != 1 || got.Content[0].Type != "text/plain" || !strings.Contains(got.Content[0].Value, "Booking ID: GP-42") {
		t.Errorf("content = %+v", got.Content)
	}
}

func TestSendGridSenderNon202(t *testing.T) {
	tests := []int{http.StatusOK, http.StatusUnauthorized, http.StatusInternalServerError}
	for _, status := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		s := NewSendGridSender("k", "from@x.io", "", srv.URL)
		if err := s.SendConfirmation(context.Background(), testRecord()); err == nil {
			t.Errorf("status %d: expected error", status)
		}
		srv.Close()
	}
}

func TestSendGridSenderNotConfigured(t *testing.T) {
	s := NewSendGridSender("", "from@x.io", "", "")
	if err := s.SendConfirmation(context.Background(), testRecord()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}
	if s.host != DefaultSendGridHost {
		t.Errorf("host = %q", s.host)
	}
}

func TestNoopSender(t *testing.T) {
	if err := (NoopSender{}).SendConfirmation(context.Background(), testRecord()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}
}
