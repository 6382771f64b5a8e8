package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/db"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return map[string]Store{
		"sqlite": NewSQLiteStore(database),
		"memory": NewMemoryStore(),
	}
}

func TestCreateRecordsGreeting(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			conv, err := store.Create(ctx, "")
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if conv.ID == "" || conv.UserID != "anonymous" {
				t.Errorf("conversation = %+v", conv)
			}
			msgs, err := store.Messages(ctx, conv.ID)
			if err != nil {
				t.Fatalf("Messages: %v", err)
			}
			if len(msgs) != 1 || msgs[0].Role != RoleAssistant || msgs[0].Content != Greeting {
				t.Errorf("messages = %+v", msgs)
			}
		})
	}
}

func TestMessagesOrdered(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			conv, _ := store.Create(ctx, "u1")
			other, _ := store.Create(ctx, "u2")

			for _, text := range []string{"hi", "book a hotel", "Jane"} {
				if _, err := store.AddMessage(ctx, conv.ID, RoleUser, text); err != nil {
					t.Fatalf("AddMessage: %v", err)
				}
			}
			if _, err := store.AddMessage(ctx, other.ID, RoleUser, "elsewhere"); err != nil {
				t.Fatalf("AddMessage: %v", err)
			}

			msgs, _ := store.Messages(ctx, conv.ID)
			if len(msgs) != 4 {
				t.Fatalf("len = %d, want 4", len(msgs))
			}
			for i, m := range msgs {
				if m.Seq != i+1 {
					t.Errorf("msg %d seq = %d", i, m.Seq)
				}
			}
			if msgs[3].Content != "Jane" {
				t.Errorf("last = %q", msgs[3].Content)
			}
		})
	}
}

func TestUnknownConversation(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get: %v", err)
			}
			if _, err := store.AddMessage(ctx, "missing", RoleUser, "x"); !errors.Is(err, ErrNotFound) {
				t.Errorf("AddMessage: %v", err)
			}
			if _, err := store.Messages(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Messages: %v", err)
			}
		})
	}
}

func TestSessionRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			conv, _ := store.Create(ctx, "")

			sess, err := store.LoadSession(ctx, conv.ID)
			if err != nil {
				t.Fatalf("LoadSession: %v", err)
			}
			if sess.Active() {
				t.Error("new conversation should have an idle session")
			}

			saved := booking.Session{
				State:       booking.StateCollecting,
				JustStarted: true,
				Values:      map[string]string{booking.SlotName: "Jane"},
				UpdatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			}
			if err := store.SaveSession(ctx, conv.ID, saved); err != nil {
				t.Fatalf("SaveSession: %v", err)
			}
			// Mutating the caller's map must not leak into the store.
			saved.Values[booking.SlotEmail] = "x@y.z"

			got, err := store.LoadSession(ctx, conv.ID)
			if err != nil {
				t.Fatalf("LoadSession: %v", err)
			}
			if got.State != booking.StateCollecting || !got.JustStarted || got.Values[booking.SlotName] != "Jane" {
				t.Errorf("session = %+v", got)
			}
			if _, ok := got.Values[booking.SlotEmail]; ok {
				t.Error("store aliased the caller's values")
			}
			if !got.UpdatedAt.Equal(saved.UpdatedAt) {
				t.Errorf("UpdatedAt = %v", got.UpdatedAt)
			}

			if err := store.SaveSession(ctx, conv.ID, booking.IdleSession()); err != nil {
				t.Fatalf("SaveSession idle: %v", err)
			}
			got, _ = store.LoadSession(ctx, conv.ID)
			if got.Active() || len(got.Values) != 0 {
				t.Errorf("after reset = %+v", got)
			}
		})
	}
}
