package conversation

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guidepro/guidepro/internal/booking"
)

// MemoryStore is a Store held in process memory, used by the chat REPL.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	messages      map[string][]Message
	sessions      map[string]booking.Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]Message),
		sessions:      make(map[string]booking.Session),
	}
}

func (m *MemoryStore) Create(ctx context.Context, userID string) (*Conversation, error) {
	if userID == "" {
		userID = "anonymous"
	}
	now := time.Now().UTC()
	conv := &Conversation{ID: uuid.New().String(), UserID: userID, CreatedAt: now, UpdatedAt: now}

	m.mu.Lock()
	m.conversations[conv.ID] = conv
	m.mu.Unlock()

	if _, err := m.AddMessage(ctx, conv.ID, RoleAssistant, Greeting); err != nil {
		return nil, err
	}
	c := *conv
	return &c, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *conv
	return &c, nil
}

func (m *MemoryStore) AddMessage(_ context.Context, conversationID string, role Role, content string) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	msg := Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Seq:            len(m.messages[conversationID]) + 1,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	conv.UpdatedAt = msg.CreatedAt
	return &msg, nil
}

func (m *MemoryStore) Messages(_ context.Context, conversationID string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[conversationID]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(m.messages[conversationID]), nil
}

func (m *MemoryStore) LoadSession(_ context.Context, conversationID string) (booking.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[conversationID]
	if !ok {
		return booking.IdleSession(), nil
	}
	sess.Values = maps.Clone(sess.Values)
	return sess, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, conversationID string, sess booking.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[conversationID]; !ok {
		return ErrNotFound
	}
	sess.Values = maps.Clone(sess.Values)
	if sess.Values == nil {
		sess.Values = map[string]string{}
	}
	m.sessions[conversationID] = sess
	return nil
}

var _ Store = (*MemoryStore)(nil)
