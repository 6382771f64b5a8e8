// Package assistant routes each chat turn to the booking dialogue, the
// document store or the completion provider.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/conversation"
	"github.com/guidepro/guidepro/internal/intent"
	"github.com/guidepro/guidepro/internal/llm"
)

// Route names the component that answered a turn.
type Route string

const (
	RouteBooking   Route = "booking"
	RouteDocuments Route = "documents"
	RouteChat      Route = "chat"
)

// ErrEmptyMessage is returned for a blank user message.
var ErrEmptyMessage = errors.New("message is empty")

// DefaultHistoryLimit caps the messages sent to the completion provider.
const DefaultHistoryLimit = 20

// Documents answers questions from uploaded documents. *rag.Store
// satisfies it.
type Documents interface {
	Len() int
	Answer(ctx context.Context, question string) string
}

// Reply is the assistant's answer to one turn.
type Reply struct {
	ConversationID string          `json:"conversation_id"`
	Text           string          `json:"reply"`
	Route          Route           `json:"route"`
	Outcome        booking.Outcome `json:"outcome,omitempty"`
}

// Options wires an Assistant. Conversations, Engine and Classifier are
// required; Documents and Provider may be nil.
type Options struct {
	Conversations conversation.Store
	Engine        *booking.Engine
	Classifier    intent.Classifier
	Documents     Documents
	Provider      llm.Provider

	// Timeout bounds each completion call. Zero disables it.
	Timeout      time.Duration
	HistoryLimit int
	Logger       *slog.Logger
}

// Assistant handles chat turns. Turns of one conversation are serialized;
// different conversations proceed concurrently.
type Assistant struct {
	opts   Options
	logger *slog.Logger
	locks  *keyedMutex
}

// New validates opts and creates an Assistant.
func New(opts Options) (*Assistant, error) {
	if opts.Conversations == nil {
		return nil, fmt.Errorf("assistant: conversation store is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("assistant: booking engine is required")
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("assistant: intent classifier is required")
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{opts: opts, logger: logger, locks: newKeyedMutex()}, nil
}

// StartConversation creates a conversation that opens with the greeting.
func (a *Assistant) StartConversation(ctx context.Context, userID string) (*conversation.Conversation, error) {
	return a.opts.Conversations.Create(ctx, userID)
}

// History returns the messages of a conversation.
func (a *Assistant) History(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	return a.opts.Conversations.Messages(ctx, conversationID)
}

// HandleMessage records text as a user message, answers it and records the
// answer. An active booking takes the turn first, then document questions,
// then new booking requests; anything else goes to the completion provider.
func (a *Assistant) HandleMessage(ctx context.Context, conversationID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	unlock := a.locks.Lock(conversationID)
	defer unlock()

	store := a.opts.Conversations
	if _, err := store.AddMessage(ctx, conversationID, conversation.RoleUser, text); err != nil {
		return Reply{}, fmt.Errorf("recording user message: %w", err)
	}

	sess, err := store.LoadSession(ctx, conversationID)
	if err != nil {
		return Reply{}, err
	}
	if a.opts.Engine.Expired(sess) {
		a.logger.Info("discarding stale booking session", "conversation", conversationID)
		sess = booking.IdleSession()
	}

	reply := Reply{ConversationID: conversationID}
	switch {
	case sess.Active():
		reply = a.book(ctx, conversationID, sess, text)
	case a.opts.Documents != nil && a.opts.Documents.Len() > 0 && a.opts.Classifier.IsDocumentQuery(text):
		reply.Route = RouteDocuments
		reply.Text = a.opts.Documents.Answer(ctx, text)
	case a.opts.Classifier.IsBookingIntent(text):
		reply = a.book(ctx, conversationID, a.opts.Engine.Start(sess), text)
	default:
		reply.Route = RouteChat
		reply.Text = a.chat(ctx, conversationID)
	}

	if _, err := store.AddMessage(ctx, conversationID, conversation.RoleAssistant, reply.Text); err != nil {
		return Reply{}, fmt.Errorf("recording reply: %w", err)
	}
	a.logger.Debug("turn handled", "conversation", conversationID, "route", reply.Route, "outcome", reply.Outcome)
	return reply, nil
}

func (a *Assistant) book(ctx context.Context, conversationID string, sess booking.Session, text string) Reply {
	next, r := a.opts.Engine.Handle(ctx, sess, text)
	if err := a.opts.Conversations.SaveSession(ctx, conversationID, next); err != nil {
		a.logger.Error("saving booking session failed", "conversation", conversationID, "error", err)
	}
	return Reply{ConversationID: conversationID, Text: r.Text, Route: RouteBooking, Outcome: r.Outcome}
}

func (a *Assistant) chat(ctx context.Context, conversationID string) string {
	history, err := a.opts.Conversations.Messages(ctx, conversationID)
	if err != nil {
		a.logger.Warn("loading history failed", "conversation", conversationID, "error", err)
		return llm.FailureMessage
	}
	if len(history) > a.opts.HistoryLimit {
		history = history[len(history)-a.opts.HistoryLimit:]
	}
	msgs := make([]llm.Message, len(history))
	for i, m := range history {
		msgs[i] = llm.Message{Role: llm.Role(m.Role), Content: m.Content}
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}
	return llm.GenerateAnswer(ctx, a.opts.Provider, msgs)
}
