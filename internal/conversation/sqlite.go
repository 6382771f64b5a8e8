package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/db"
)

// SQLiteStore is a Store on the guidepro database.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a store on database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// Create inserts a conversation and its greeting.
func (s *SQLiteStore) Create(ctx context.Context, userID string) (*Conversation, error) {
	if userID == "" {
		userID = "anonymous"
	}
	now := time.Now().UTC()
	conv := Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		conv.ID, conv.UserID, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	if _, err := s.AddMessage(ctx, conv.ID, RoleAssistant, Greeting); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Get returns the conversation with id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	return &c, nil
}

// AddMessage appends a message after the last one of the conversation.
func (s *SQLiteStore) AddMessage(ctx context.Context, conversationID string, role Role, content string) (*Message, error) {
	msg := Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, msg.CreatedAt, conversationID)
	if err != nil {
		return nil, fmt.Errorf("touching conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO chat_messages (id, conversation_id, seq, role, content, created_at)
		 SELECT ?, ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?
		 FROM chat_messages WHERE conversation_id = ?
		 RETURNING seq`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.CreatedAt, conversationID,
	).Scan(&msg.Seq)
	if err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}
	return &msg, nil
}

// Messages returns the conversation's messages oldest first.
func (s *SQLiteStore) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	if _, err := s.Get(ctx, conversationID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, seq, role, content, created_at
		 FROM chat_messages WHERE conversation_id = ? ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// LoadSession reads the saved booking session of a conversation.
func (s *SQLiteStore) LoadSession(ctx context.Context, conversationID string) (booking.Session, error) {
	var (
		sess        booking.Session
		justStarted int
		values      string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, just_started, slot_values, updated_at
		 FROM dialogue_sessions WHERE conversation_id = ?`, conversationID,
	).Scan(&sess.State, &justStarted, &values, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.IdleSession(), nil
	}
	if err != nil {
		return booking.Session{}, fmt.Errorf("loading dialogue session: %w", err)
	}
	sess.JustStarted = justStarted != 0
	if err := json.Unmarshal([]byte(values), &sess.Values); err != nil {
		return booking.Session{}, fmt.Errorf("decoding slot values: %w", err)
	}
	if sess.Values == nil {
		sess.Values = map[string]string{}
	}
	return sess, nil
}

// SaveSession upserts the booking session of a conversation.
func (s *SQLiteStore) SaveSession(ctx context.Context, conversationID string, sess booking.Session) error {
	values, err := json.Marshal(sess.Values)
	if err != nil {
		return fmt.Errorf("encoding slot values: %w", err)
	}
	if sess.Values == nil {
		values = []byte("{}")
	}
	if sess.State == "" {
		sess.State = booking.StateIdle
	}
	justStarted := 0
	if sess.JustStarted {
		justStarted = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dialogue_sessions (conversation_id, state, just_started, slot_values, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
		   state = excluded.state,
		   just_started = excluded.just_started,
		   slot_values = excluded.slot_values,
		   updated_at = excluded.updated_at`,
		conversationID, sess.State, justStarted, string(values), sess.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving dialogue session: %w", err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
