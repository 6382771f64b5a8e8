package booking

import (
	"maps"
	"time"
)

// State is the dialogue state of a Session.
type State string

const (
	StateIdle                 State = "idle"
	StateCollecting           State = "collecting"
	StateAwaitingConfirmation State = "awaiting_confirmation"
)

// Session is the booking dialogue state of one conversation. It is passed
// into and returned from every Engine call and never shared.
type Session struct {
	State       State             `json:"state"`
	JustStarted bool              `json:"just_started"`
	Values      map[string]string `json:"values"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Active reports whether a booking is in progress.
func (s Session) Active() bool {
	return s.State == StateCollecting || s.State == StateAwaitingConfirmation
}

// clone copies the session so the caller's value is never mutated.
func (s Session) clone() Session {
	c := s
	c.Values = maps.Clone(s.Values)
	if c.Values == nil {
		c.Values = make(map[string]string)
	}
	return c
}

// IdleSession returns an empty session.
func IdleSession() Session {
	return Session{State: StateIdle, Values: map[string]string{}}
}
