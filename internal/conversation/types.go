// Package conversation keeps chat history and the booking dialogue state
// of each conversation.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/guidepro/guidepro/internal/booking"
)

// Greeting is the first assistant message of every conversation.
const Greeting = "Hello! I'm GuidePro AI. How can I assist your travel today?"

// ErrNotFound is returned for an unknown conversation id.
var ErrNotFound = errors.New("conversation not found")

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Conversation is one chat thread.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single chat message. Seq orders messages within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Seq            int       `json:"seq"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists conversations, their messages and their booking sessions.
type Store interface {
	// Create starts a conversation and records the greeting.
	Create(ctx context.Context, userID string) (*Conversation, error)
	Get(ctx context.Context, id string) (*Conversation, error)
	AddMessage(ctx context.Context, conversationID string, role Role, content string) (*Message, error)
	Messages(ctx context.Context, conversationID string) ([]Message, error)
	// LoadSession returns an idle session when none was saved.
	LoadSession(ctx context.Context, conversationID string) (booking.Session, error)
	SaveSession(ctx context.Context, conversationID string, s booking.Session) error
}
