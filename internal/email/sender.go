// Package email delivers booking confirmations to guests.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/guidepro/guidepro/internal/booking"
)

// DefaultSendGridHost is the SendGrid API host.
const DefaultSendGridHost = "https://api.sendgrid.com"

const sendGridMailPath = "/v3/mail/send"

// ErrNotConfigured is returned when no email provider is set up.
var ErrNotConfigured = errors.New("email is not configured")

// Message is a plain-text email ready to send.
type Message struct {
	To      string
	Subject string
	Body    string
}

// ConfirmationMessage renders the confirmation email for a booking.
func ConfirmationMessage(rec booking.Record) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", rec.Name)
	b.WriteString("Your booking has been confirmed. Here are the details:\n\n")
	fmt.Fprintf(&b, "Booking ID: %s\n", rec.Reference())
	fmt.Fprintf(&b, "Destination: %s\n", rec.Destination)
	if rec.Hotel != "" && rec.Hotel != rec.Destination {
		fmt.Fprintf(&b, "Hotel: %s\n", rec.Hotel)
	}
	fmt.Fprintf(&b, "Check-in: %s\n", rec.CheckIn.Format(booking.DateLayout))
	fmt.Fprintf(&b, "Check-out: %s\n", rec.CheckOut.Format(booking.DateLayout))
	fmt.Fprintf(&b, "Guests: %d\n", rec.Guests)
	if rec.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", rec.Phone)
	}
	b.WriteString("\nThank you for choosing GuidePro AI.\n")

	return Message{
		To:      rec.Email,
		Subject: "Your Booking Confirmation (ID " + rec.Reference() + ")",
		Body:    b.String(),
	}
}

// SendGridSender posts confirmations through the SendGrid v3 mail API.
type SendGridSender struct {
	apiKey   string
	from     string
	fromName string
	host     string
}

// NewSendGridSender creates a sender. An empty host uses DefaultSendGridHost.
func NewSendGridSender(apiKey, from, fromName, host string) *SendGridSender {
	if host == "" {
		host = DefaultSendGridHost
	}
	return &SendGridSender{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		host:     host,
	}
}

// SendConfirmation implements booking.Notifier.
func (s *SendGridSender) SendConfirmation(ctx context.Context, rec booking.Record) error {
	return s.Send(ctx, ConfirmationMessage(rec))
}

// Send delivers msg. SendGrid acknowledges with 202 Accepted; any other
// status is a failure.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" || s.from == "" {
		return ErrNotConfigured
	}

	m := mail.NewV3MailInit(
		mail.NewEmail(s.fromName, s.from),
		msg.Subject,
		mail.NewEmail("", msg.To),
		mail.NewContent("text/plain", msg.Body),
	)

	req := sendgrid.GetRequest(s.apiKey, sendGridMailPath, s.host)
	req.Method = http.MethodPost
	req.Body = mail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(resp.Body), 512))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// NoopSender is used when email is disabled. Every send fails with
// ErrNotConfigured so the guest is told no email went out.
type NoopSender struct{}

// SendConfirmation implements booking.Notifier.
func (NoopSender) SendConfirmation(context.Context, booking.Record) error {
	return ErrNotConfigured
}

var (
	_ booking.Notifier = (*SendGridSender)(nil)
	_ booking.Notifier = NoopSender{}
)
