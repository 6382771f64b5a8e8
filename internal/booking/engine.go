package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Outcome tells the caller what a turn did.
type Outcome string

const (
	OutcomePrompt           Outcome = "prompt"
	OutcomeInvalid          Outcome = "invalid"
	OutcomeSummary          Outcome = "summary"
	OutcomeReprompt         Outcome = "reprompt"
	OutcomeCommitted        Outcome = "committed"
	OutcomeCommittedNoEmail Outcome = "committed_no_email"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeSaveFailed       Outcome = "save_failed"
	OutcomeReset            Outcome = "reset"
)

// Reply is the chat text produced by one turn.
type Reply struct {
	Text    string  `json:"text"`
	Outcome Outcome `json:"outcome"`
}

// Notifier sends the booking confirmation to the guest.
type Notifier interface {
	SendConfirmation(ctx context.Context, rec Record) error
}

// Messages shown at fixed points of the dialogue.
const (
	MsgConfirmPrompt = "Please respond with **Yes** or **No** to confirm your booking."
	MsgCancelled     = "❌ Booking cancelled. How else may I assist you?"
	MsgLostFlow      = "I seem to have lost the booking flow. Please say **Book Hotel** to start again."
	MsgSaveFailed    = "⚠️ Sorry, your booking could not be saved right now, so nothing has been booked yet. Reply **Yes** to try again or **No** to cancel."
	msgConfirmed     = "🎉 **Your booking is confirmed!** Your reference is **%s**. The details have been saved %s"
	msgEmailSent     = "and a confirmation email has been sent."
	msgEmailFailed   = "but the confirmation email could not be sent."
)

var (
	affirmative = map[string]bool{"yes": true, "y": true, "ok": true, "confirm": true}
	negative    = map[string]bool{"no": true, "n": true, "cancel": true}
)

// Engine drives the slot-filling dialogue. It holds no per-conversation
// state, so one Engine serves every conversation.
type Engine struct {
	schema           Schema
	repo             Repository
	notifier         Notifier
	timeout          time.Duration
	enforceDateOrder bool
	sessionTTL       time.Duration
	now              func() time.Time
	logger           *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSchema replaces the default slot schema.
func WithSchema(s Schema) Option { return func(e *Engine) { e.schema = s } }

// WithTimeout bounds the persistence and email calls of a commit.
func WithTimeout(d time.Duration) Option { return func(e *Engine) { e.timeout = d } }

// WithDateOrder rejects a check-out date that is not after check-in.
func WithDateOrder(enforce bool) Option { return func(e *Engine) { e.enforceDateOrder = enforce } }

// WithSessionTTL discards sessions idle for longer than d. Zero disables it.
func WithSessionTTL(d time.Duration) Option { return func(e *Engine) { e.sessionTTL = d } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// NewEngine creates an Engine. notifier may be nil, in which case no email
// is sent and confirmations say so.
func NewEngine(repo Repository, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		schema:   DefaultSchema(),
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the slot schema in use.
func (e *Engine) Schema() Schema { return e.schema }

// Start begins a fresh booking. The message that triggered it is not an
// answer; the next Handle call asks the first slot.
func (e *Engine) Start(Session) Session {
	return Session{
		State:       StateCollecting,
		JustStarted: true,
		Values:      map[string]string{},
		UpdatedAt:   e.now(),
	}
}

// Expired reports whether an active session has been idle longer than the
// configured TTL.
func (e *Engine) Expired(s Session) bool {
	return e.sessionTTL > 0 && s.Active() && !s.UpdatedAt.IsZero() && e.now().Sub(s.UpdatedAt) > e.sessionTTL
}

// Handle consumes one user turn and returns the updated session and the
// reply. Expected failures are reported in the reply, never as errors.
func (e *Engine) Handle(ctx context.Context, s Session, input string) (Session, Reply) {
	s = s.clone()
	next, reply := e.handle(ctx, s, input)
	if next.Active() {
		next.UpdatedAt = e.now()
	}
	return next, reply
}

func (e *Engine) handle(ctx context.Context, s Session, input string) (Session, Reply) {
	if s.JustStarted {
		s.JustStarted = false
		if s.State == StateCollecting {
			if slot, ok := e.schema.MissingSlot(s.Values); ok {
				return s, Reply{
					Text:    fmt.Sprintf("Sure, let's book your hotel. What is your **%s**?", slot.Prompt),
					Outcome: OutcomePrompt,
				}
			}
		}
	}

	switch s.State {
	case StateAwaitingConfirmation:
		if _, missing := e.schema.MissingSlot(s.Values); missing {
			return e.lost("awaiting confirmation with unfilled slots")
		}
		return e.confirm(ctx, s, input)
	case StateCollecting:
		return e.collect(s, input)
	default:
		return e.lost("turn received without an active booking")
	}
}

func (e *Engine) collect(s Session, input string) (Session, Reply) {
	slot, ok := e.schema.MissingSlot(s.Values)
	if !ok || slot.Validate == nil {
		return e.lost("collecting with no missing slot")
	}

	value, err := slot.Validate(input)
	if err == nil && e.enforceDateOrder && slot.Key == SlotCheckOut {
		err = checkDateOrder(s.Values[SlotCheckIn], value)
	}
	if err != nil {
		return s, Reply{
			Text:    fmt.Sprintf("%s What is your **%s**?", validationMessage(err), slot.Prompt),
			Outcome: OutcomeInvalid,
		}
	}

	s.Values[slot.Key] = value
	if next, ok := e.schema.MissingSlot(s.Values); ok {
		return s, Reply{
			Text:    fmt.Sprintf("Got it. And what is your **%s**?", next.Prompt),
			Outcome: OutcomePrompt,
		}
	}

	s.State = StateAwaitingConfirmation
	return s, Reply{Text: e.summary(s.Values), Outcome: OutcomeSummary}
}

func (e *Engine) confirm(ctx context.Context, s Session, input string) (Session, Reply) {
	choice := strings.ToLower(strings.TrimSpace(input))
	switch {
	case affirmative[choice]:
		return e.commit(ctx, s)
	case negative[choice]:
		return IdleSession(), Reply{Text: MsgCancelled, Outcome: OutcomeCancelled}
	default:
		return s, Reply{Text: MsgConfirmPrompt, Outcome: OutcomeReprompt}
	}
}

// commit persists the booking, then sends the confirmation email. The
// session is only reset once the booking is stored; a failed save keeps it
// awaiting confirmation so the guest can retry.
func (e *Engine) commit(ctx context.Context, s Session) (Session, Reply) {
	rec, err := NewRecord(s.Values)
	if err != nil {
		e.logger.Error("collected booking failed validation", "error", err)
		return e.lost("invalid collected record")
	}

	sctx, cancel := e.withTimeout(ctx)
	err = e.repo.Add(sctx, &rec)
	cancel()
	if err != nil {
		e.logger.Error("saving booking failed", "email", rec.Email, "error", err)
		return s, Reply{Text: MsgSaveFailed, Outcome: OutcomeSaveFailed}
	}
	e.logger.Info("booking saved", "id", rec.ID, "destination", rec.Destination, "guests", rec.Guests)

	outcome, emailText := OutcomeCommitted, msgEmailSent
	if err := e.notify(ctx, rec); err != nil {
		e.logger.Warn("confirmation email not sent", "id", rec.ID, "error", err)
		outcome, emailText = OutcomeCommittedNoEmail, msgEmailFailed
	}

	return IdleSession(), Reply{
		Text:    fmt.Sprintf(msgConfirmed, rec.Reference(), emailText),
		Outcome: outcome,
	}
}

func (e *Engine) notify(ctx context.Context, rec Record) error {
	if e.notifier == nil {
		return errors.New("no email notifier configured")
	}
	nctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.notifier.SendConfirmation(nctx, rec)
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) lost(reason string) (Session, Reply) {
	e.logger.Warn("booking flow reset", "reason", reason)
	return IdleSession(), Reply{Text: MsgLostFlow, Outcome: OutcomeReset}
}

func (e *Engine) summary(values map[string]string) string {
	var sb strings.Builder
	sb.WriteString("### 📄 Booking Summary\n\n")
	for _, slot := range e.schema {
		fmt.Fprintf(&sb, "- **%s:** %s\n", summaryLabel(slot.Key), values[slot.Key])
	}
	sb.WriteString("\nDoes everything look correct?\nPlease reply **Yes** or **No**.")
	return sb.String()
}

var summaryLabels = map[string]string{
	SlotName:        "Name",
	SlotEmail:       "Email",
	SlotPhone:       "Phone",
	SlotDestination: "Destination",
	SlotCheckIn:     "Check-in",
	SlotCheckOut:    "Check-out",
	SlotGuests:      "Guests",
}

func summaryLabel(key string) string {
	if l, ok := summaryLabels[key]; ok {
		return l
	}
	return key
}

func checkDateOrder(checkIn, checkOut string) error {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return nil
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil || !out.After(in) {
		return ErrDateOrder
	}
	return nil
}

func validationMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
