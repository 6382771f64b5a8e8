package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type mockRepo struct {
	mu      sync.Mutex
	added   []Record
	err     error
	nextID  int64
	deleted []int64
}

func (m *mockRepo) Add(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now()
	m.added = append(m.added, *rec)
	return nil
}

func (m *mockRepo) List(context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.added))
	for i := range m.added {
		out[i] = m.added[len(m.added)-1-i]
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockNotifier struct {
	sent []Record
	err  error
}

func (m *mockNotifier) SendConfirmation(_ context.Context, rec Record) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, rec)
	return nil
}

var happyAnswers = []string{"Jane Doe", "jane@example.com", "555-1234", "Paris", "2025-06-01", "2025-06-05", "2"}

// run feeds inputs one by one and returns the final session and every reply.
func run(t *testing.T, e *Engine, s Session, inputs ...string) (Session, []Reply) {
	t.Helper()
	var replies []Reply
	for _, in := range inputs {
		var r Reply
		s, r = e.Handle(context.Background(), s, in)
		replies = append(replies, r)
	}
	return s, replies
}

func TestHappyPathAsksSlotsInOrderAndCommitsOnce(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	e := NewEngine(repo, notifier)

	s := e.Start(IdleSession())
	s, replies := run(t, e, s, append([]string{"I want to book a hotel"}, happyAnswers...)...)

	wantPrompts := []string{"full name", "email address", "phone number", "destination",
		"check-in date (YYYY-MM-DD)", "check-out date (YYYY-MM-DD)", "number of guests"}
	for i, want := range wantPrompts {
		if replies[i].Outcome != OutcomePrompt {
			t.Fatalf("turn %d: outcome %q, want prompt", i, replies[i].Outcome)
		}
		if !strings.Contains(replies[i].Text, "**"+want+"**") {
			t.Errorf("turn %d asked %q, want %q", i, replies[i].Text, want)
		}
	}
	if !strings.HasPrefix(replies[0].Text, "Sure, let's book your hotel.") {
		t.Errorf("first prompt = %q", replies[0].Text)
	}

	summary := replies[len(replies)-1]
	if summary.Outcome != OutcomeSummary || s.State != StateAwaitingConfirmation {
		t.Fatalf("expected summary, got %q in state %q", summary.Outcome, s.State)
	}
	for _, v := range happyAnswers {
		if !strings.Contains(summary.Text, v) {
			t.Errorf("summary missing %q", v)
		}
	}
	if len(repo.added) != 0 {
		t.Fatal("nothing may be saved before confirmation")
	}

	s, replies = run(t, e, s, "YES")
	if replies[0].Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %q: %s", replies[0].Outcome, replies[0].Text)
	}
	if !strings.Contains(replies[0].Text, "confirmation email has been sent") || !strings.Contains(replies[0].Text, "GP-1") {
		t.Errorf("confirmation text = %q", replies[0].Text)
	}
	if len(repo.added) != 1 {
		t.Fatalf("add_booking called %d times", len(repo.added))
	}
	rec := repo.added[0]
	if rec.Name != "Jane Doe" || rec.Hotel != "Paris" || rec.Phone != "555-1234" || rec.Notes != "" || rec.Guests != 2 {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("emails sent = %d", len(notifier.sent))
	}
	if s.State != StateIdle || len(s.Values) != 0 {
		t.Errorf("session not reset: %+v", s)
	}

	// A stray turn after the commit does not save again.
	_, replies = run(t, e, s, "yes")
	if replies[0].Outcome != OutcomeReset || len(repo.added) != 1 {
		t.Errorf("second yes: outcome %q, saves %d", replies[0].Outcome, len(repo.added))
	}
}

func TestInvalidEmailRepromptsSameSlot(t *testing.T) {
	e := NewEngine(&mockRepo{}, nil)
	s, _ := run(t, e, e.Start(IdleSession()), "book", "Jane Doe")

	for i := 0; i < 2; i++ {
		var r Reply
		s, r = e.Handle(context.Background(), s, "not-an-email")
		want := "That doesn't look like a valid email address. What is your **email address**?"
		if r.Outcome != OutcomeInvalid || r.Text != want {
			t.Errorf("attempt %d: got %q (%s)", i, r.Text, r.Outcome)
		}
		if _, ok := s.Values[SlotEmail]; ok {
			t.Error("invalid email must not be stored")
		}
	}
}

func TestGuestsValidation(t *testing.T) {
	e := NewEngine(&mockRepo{}, nil)
	s, _ := run(t, e, e.Start(IdleSession()), append([]string{"book"}, happyAnswers[:6]...)...)

	s, r := e.Handle(context.Background(), s, "-3")
	if r.Outcome != OutcomeInvalid || !strings.Contains(r.Text, "must be greater than zero") {
		t.Errorf("-3: %q", r.Text)
	}
	s, r = e.Handle(context.Background(), s, "two")
	if r.Outcome != OutcomeInvalid || !strings.Contains(r.Text, "as a number") {
		t.Errorf("two: %q", r.Text)
	}
	s, r = e.Handle(context.Background(), s, "3")
	if r.Outcome != OutcomeSummary || s.Values[SlotGuests] != "3" {
		t.Errorf("3: %q, values %v", r.Outcome, s.Values)
	}
}

func TestConfirmationRepromptsOnUnknownReply(t *testing.T) {
	repo := &mockRepo{}
	e := NewEngine(repo, nil)
	s, _ := run(t, e, e.Start(IdleSession()), append([]string{"book"}, happyAnswers...)...)
	before := s.Values

	s, r := e.Handle(context.Background(), s, "maybe")
	if r.Outcome != OutcomeReprompt || r.Text != MsgConfirmPrompt {
		t.Errorf("got %q", r.Text)
	}
	if s.State != StateAwaitingConfirmation || len(s.Values) != len(before) || s.Values[SlotEmail] != before[SlotEmail] {
		t.Errorf("record changed: %+v", s)
	}
	if len(repo.added) != 0 {
		t.Error("maybe must not commit")
	}
}

func TestCancellationClearsState(t *testing.T) {
	repo := &mockRepo{}
	e := NewEngine(repo, nil)
	s, _ := run(t, e, e.Start(IdleSession()), append([]string{"book"}, happyAnswers...)...)

	s, r := e.Handle(context.Background(), s, " No ")
	if r.Outcome != OutcomeCancelled || r.Text != MsgCancelled {
		t.Errorf("got %q", r.Text)
	}
	if s.State != StateIdle || len(s.Values) != 0 || len(repo.added) != 0 {
		t.Fatalf("state not cleared: %+v", s)
	}

	s = e.Start(s)
	s, r = e.Handle(context.Background(), s, "book again")
	if !strings.Contains(r.Text, "full name") || len(s.Values) != 0 {
		t.Errorf("fresh booking should start at name with no values: %q %v", r.Text, s.Values)
	}
}

func TestEmailFailureStillCommits(t *testing.T) {
	repo := &mockRepo{}
	e := NewEngine(repo, &mockNotifier{err: errors.New("sendgrid 401")})
	s, _ := run(t, e, e.Start(IdleSession()), append([]string{"book"}, happyAnswers...)...)

	s, r := e.Handle(context.Background(), s, "ok")
	if r.Outcome != OutcomeCommittedNoEmail || !strings.Contains(r.Text, "could not be sent") {
		t.Errorf("got %q (%s)", r.Text, r.Outcome)
	}
	if len(repo.added) != 1 || s.State != StateIdle {
		t.Errorf("booking should be saved and session reset")
	}
}

func TestSaveFailureKeepsSessionForRetry(t *testing.T) {
	repo := &mockRepo{err: errors.New("disk full")}
	notifier := &mockNotifier{}
	e := NewEngine(repo, notifier)
	s, _ := run(t, e, e.Start(IdleSession()), append([]string{"book"}, happyAnswers...)...)

	s, r := e.Handle(context.Background(), s, "confirm")
	if r.Outcome != OutcomeSaveFailed || strings.Contains(r.Text, "confirmed") {
		t.Fatalf("save failure must not claim success: %q", r.Text)
	}
	if s.State != StateAwaitingConfirmation || s.Values[SlotName] != "Jane Doe" {
		t.Fatalf("session should keep its values: %+v", s)
	}
	if len(notifier.sent) != 0 {
		t.Error("no email before the booking is saved")
	}

	repo.err = nil
	s, r = e.Handle(context.Background(), s, "y")
	if r.Outcome != OutcomeCommitted || len(repo.added) != 1 {
		t.Errorf("retry: %q, saves %d", r.Outcome, len(repo.added))
	}
	if s.State != StateIdle {
		t.Errorf("state after retry = %q", s.State)
	}
}

func TestSaveTimeout(t *testing.T) {
	e := NewEngine(blockingRepo{&mockRepo{}}, nil, WithTimeout(10*time.Millisecond))
	s, _ := run(t, e, e.Start(IdleSession()), append([]string{"book"}, happyAnswers...)...)
	_, r := e.Handle(context.Background(), s, "yes")
	if r.Outcome != OutcomeSaveFailed {
		t.Errorf("outcome = %q", r.Outcome)
	}
}

type blockingRepo struct{ *mockRepo }

func (blockingRepo) Add(ctx context.Context, _ *Record) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleWithoutSessionResets(t *testing.T) {
	e := NewEngine(&mockRepo{}, nil)
	s, r := e.Handle(context.Background(), IdleSession(), "hello")
	if r.Outcome != OutcomeReset || r.Text != MsgLostFlow || s.State != StateIdle {
		t.Errorf("got %+v %+v", s, r)
	}

	// Awaiting confirmation with a hole in the record is inconsistent.
	broken := Session{State: StateAwaitingConfirmation, Values: map[string]string{SlotName: "x"}}
	s, r = e.Handle(context.Background(), broken, "yes")
	if r.Outcome != OutcomeReset || s.State != StateIdle {
		t.Errorf("inconsistent session: %+v %+v", s, r)
	}
}

func TestJustStartedConsumedOnce(t *testing.T) {
	e := NewEngine(&mockRepo{}, nil)
	s := e.Start(IdleSession())
	s, _ = e.Handle(context.Background(), s, "book a room")
	if s.JustStarted {
		t.Fatal("flag should be cleared after the first prompt")
	}
	if len(s.Values) != 0 {
		t.Fatal("the triggering message is not an answer")
	}
	s, _ = e.Handle(context.Background(), s, "Jane")
	if s.Values[SlotName] != "Jane" {
		t.Errorf("second turn should fill name, got %v", s.Values)
	}
}

func TestHandleDoesNotMutateInput(t *testing.T) {
	e := NewEngine(&mockRepo{}, nil)
	s := Session{State: StateCollecting, Values: map[string]string{}}
	_, _ = e.Handle(context.Background(), s, "Jane")
	if len(s.Values) != 0 {
		t.Error("caller's session was mutated")
	}
}

func TestDateOrderOption(t *testing.T) {
	inputs := append([]string{"book"}, happyAnswers[:5]...)

	lenient := NewEngine(&mockRepo{}, nil)
	s, _ := run(t, lenient, lenient.Start(IdleSession()), inputs...)
	_, r := lenient.Handle(context.Background(), s, "2025-05-01")
	if r.Outcome != OutcomePrompt {
		t.Errorf("ordering is not checked by default, got %q", r.Text)
	}

	strict := NewEngine(&mockRepo{}, nil, WithDateOrder(true))
	s, _ = run(t, strict, strict.Start(IdleSession()), inputs...)
	s, r = strict.Handle(context.Background(), s, "2025-05-01")
	if r.Outcome != OutcomeInvalid || !strings.Contains(r.Text, "after the check-in") {
		t.Errorf("strict: %q", r.Text)
	}
	if _, ok := s.Values[SlotCheckOut]; ok {
		t.Error("rejected checkout stored")
	}
}

func TestOverlongAnswersArePromptedAgain(t *testing.T) {
	repo := &mockRepo{}
	e := NewEngine(repo, nil)
	s, _ := run(t, e, e.Start(IdleSession()), "book")

	s, replies := run(t, e, s, strings.Repeat("a", MaxNameLen+1))
	if replies[0].Outcome != OutcomeInvalid || !strings.Contains(replies[0].Text, "**full name**") {
		t.Fatalf("long name: %q %q", replies[0].Outcome, replies[0].Text)
	}

	s, replies = run(t, e, s, "Jane Doe", "jane@example.com", "+1 (555) 123-4567 ext. 8901 ask for front desk please")
	if replies[2].Outcome != OutcomeInvalid || !strings.Contains(replies[2].Text, "**phone number**") {
		t.Fatalf("long phone: %q %q", replies[2].Outcome, replies[2].Text)
	}
	if _, ok := s.Values[SlotPhone]; ok {
		t.Error("rejected phone stored")
	}

	s, _ = run(t, e, s, happyAnswers[2:]...)
	if s.State != StateAwaitingConfirmation {
		t.Fatalf("state = %q", s.State)
	}
	_, replies = run(t, e, s, "yes")
	if replies[0].Outcome != OutcomeCommittedNoEmail || len(repo.added) != 1 {
		t.Fatalf("outcome = %q, saved %d", replies[0].Outcome, len(repo.added))
	}
}

func TestAnswersAtLengthLimitCommit(t *testing.T) {
	repo := &mockRepo{}
	e := NewEngine(repo, nil)

	answers := []string{
		strings.Repeat("n", MaxNameLen),
		strings.Repeat("e", MaxEmailLen-len("@example.com")) + "@example.com",
		strings.Repeat("5", MaxPhoneLen),
		strings.Repeat("d", MaxDestinationLen),
		"2025-06-01", "2025-06-05", "2",
	}
	s, replies := run(t, e, e.Start(IdleSession()), append([]string{"book"}, answers...)...)
	if last := replies[len(replies)-1]; last.Outcome != OutcomeSummary {
		t.Fatalf("outcome = %q: %s", last.Outcome, last.Text)
	}

	s, replies = run(t, e, s, "yes")
	if replies[0].Outcome != OutcomeCommittedNoEmail {
		t.Fatalf("every value the schema accepts must commit, got %q: %s", replies[0].Outcome, replies[0].Text)
	}
	if s.State != StateIdle || len(repo.added) != 1 || repo.added[0].Name != answers[0] {
		t.Errorf("state %q, saved %d", s.State, len(repo.added))
	}
}

func TestSessionTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(&mockRepo{}, nil, WithSessionTTL(30*time.Minute), WithClock(func() time.Time { return now }))

	s := e.Start(IdleSession())
	s, _ = e.Handle(context.Background(), s, "book")
	if e.Expired(s) {
		t.Fatal("fresh session expired")
	}
	now = now.Add(31 * time.Minute)
	if !e.Expired(s) {
		t.Error("session should expire after the TTL")
	}
	if NewEngine(&mockRepo{}, nil).Expired(s) {
		t.Error("no TTL means no expiry")
	}
}
