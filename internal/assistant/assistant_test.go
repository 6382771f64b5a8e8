package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/config"
	"github.com/guidepro/guidepro/internal/conversation"
	"github.com/guidepro/guidepro/internal/intent"
	"github.com/guidepro/guidepro/internal/llm"
)

type mockRepo struct {
	mu    sync.Mutex
	added []booking.Record
}

func (m *mockRepo) Add(_ context.Context, rec *booking.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.added) + 1)
	m.added = append(m.added, *rec)
	return nil
}

func (m *mockRepo) List(context.Context) ([]booking.Record, error) { return nil, nil }
func (m *mockRepo) Delete(context.Context, int64) error           { return nil }

type fakeDocs struct {
	n     int
	asked []string
}

func (f *fakeDocs) Len() int { return f.n }
func (f *fakeDocs) Answer(_ context.Context, q string) string {
	f.asked = append(f.asked, q)
	return "from the documents"
}

type recordingProvider struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest
	err      error
}

func (p *recordingProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: "generated answer"}, nil
}

func (p *recordingProvider) Name() string { return "recording" }

type fixture struct {
	a        *Assistant
	store    *conversation.MemoryStore
	repo     *mockRepo
	docs     *fakeDocs
	provider *recordingProvider
}

func newFixture(t *testing.T, engineOpts ...booking.Option) *fixture {
	t.Helper()
	f := &fixture{
		store:    conversation.NewMemoryStore(),
		repo:     &mockRepo{},
		docs:     &fakeDocs{},
		provider: &recordingProvider{},
	}
	a, err := New(Options{
		Conversations: f.store,
		Engine:        booking.NewEngine(f.repo, nil, engineOpts...),
		Classifier:    intent.NewKeywordClassifier(config.DefaultBookingKeywords, config.DefaultDocumentKeywords),
		Documents:     f.docs,
		Provider:      f.provider,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.a = a
	return f
}

func (f *fixture) conversation(t *testing.T) string {
	t.Helper()
	conv, err := f.a.StartConversation(context.Background(), "")
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	return conv.ID
}

func (f *fixture) send(t *testing.T, id, text string) Reply {
	t.Helper()
	r, err := f.a.HandleMessage(context.Background(), id, text)
	if err != nil {
		t.Fatalf("HandleMessage(%q): %v", text, err)
	}
	return r
}

func TestBookingIntentStartsDialogue(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t)

	r := f.send(t, id, "I want to book a hotel")
	if r.Route != RouteBooking || r.Outcome != booking.OutcomePrompt {
		t.Fatalf("reply = %+v", r)
	}
	if !strings.Contains(r.Text, "full name") {
		t.Errorf("first prompt = %q", r.Text)
	}
}

func TestActiveSessionBeatsDocuments(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t)
	f.send(t, id, "book a room")

	f.docs.n = 5
	r := f.send(t, id, "Hotel Policy Fan")
	if r.Route != RouteBooking {
		t.Fatalf("route = %q, want booking", r.Route)
	}
	if len(f.docs.asked) != 0 {
		t.Error("documents should not see booking answers")
	}
	sess, _ := f.store.LoadSession(context.Background(), id)
	if sess.Values[booking.SlotName] != "Hotel Policy Fan" {
		t.Errorf("name slot = %q", sess.Values[booking.SlotName])
	}
}

func TestDocumentsBeatNewBookingIntent(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t)
	f.docs.n = 2

	r := f.send(t, id, "What is the hotel cancellation policy?")
	if r.Route != RouteDocuments || r.Text != "from the documents" {
		t.Fatalf("reply = %+v", r)
	}
	sess, _ := f.store.LoadSession(context.Background(), id)
	if sess.Active() {
		t.Error("document question must not start a booking")
	}
}

func TestDocumentKeywordsIgnoredWhenStoreEmpty(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t)

	r := f.send(t, id, "summarize the pdf")
	if r.Route != RouteChat {
		t.Fatalf("route = %q, want chat", r.Route)
	}
}

func TestChatFallbackSendsHistory(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t)

	r := f.send(t, id, "What should I pack for Paris?")
	if r.Route != RouteChat || r.Text != "generated answer" {
		t.Fatalf("reply = %+v", r)
	}
	req := f.provider.requests[0]
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if req.Messages[0].Role != llm.RoleAssistant || req.Messages[1].Content != "What should I pack for Paris?" {
		t.Errorf("history = %+v", req.Messages)
	}

	msgs, _ := f.store.Messages(context.Background(), id)
	if len(msgs) != 3 || msgs[2].Content != "generated answer" {
		t.Errorf("stored = %+v", msgs)
	}
}

func TestChatHistoryIsCapped(t *testing.T) {
	f := newFixture(t)
	f.a.opts.HistoryLimit = 3
	id := f.conversation(t)
	for i := 0; i < 4; i++ {
		f.send(t, id, fmt.Sprintf("question %d", i))
	}
	last := f.provider.requests[len(f.provider.requests)-1]
	if len(last.Messages) != 3 || last.Messages[2].Content != "question 3" {
		t.Errorf("messages = %+v", last.Messages)
	}
}

func TestChatWithoutProvider(t *testing.T) {
	f := newFixture(t)
	f.a.opts.Provider = nil
	id := f.conversation(t)
	if r := f.send(t, id, "hello there"); r.Text != llm.NotConfiguredMessage {
		t.Errorf("reply = %q", r.Text)
	}
}

func TestProviderFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("boom")
	id := f.conversation(t)
	if r := f.send(t, id, "hello there"); r.Text != llm.FailureMessage {
		t.Errorf("reply = %q", r.Text)
	}
}

func TestFullBookingThroughAssistant(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t)

	f.send(t, id, "book a hotel")
	var r Reply
	for _, answer := range []string{"Jane Doe", "jane@example.com", "555-1234", "Paris", "2025-06-01", "2025-06-05", "2"} {
		r = f.send(t, id, answer)
	}
	if r.Outcome != booking.OutcomeSummary {
		t.Fatalf("after answers: %+v", r)
	}
	r = f.send(t, id, "yes")
	if r.Outcome != booking.OutcomeCommittedNoEmail || !strings.Contains(r.Text, "GP-1") {
		t.Fatalf("commit reply = %+v", r)
	}
	if len(f.repo.added) != 1 {
		t.Fatalf("bookings = %d", len(f.repo.added))
	}

	// The conversation is back to normal chat.
	if r := f.send(t, id, "yes"); r.Route != RouteChat {
		t.Errorf("route after commit = %q", r.Route)
	}
	if len(f.repo.added) != 1 {
		t.Error("booking committed twice")
	}
}

func TestStaleSessionDiscarded(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t,
		booking.WithSessionTTL(time.Minute),
		booking.WithClock(func() time.Time { return now }),
	)
	id := f.conversation(t)
	f.send(t, id, "book a hotel")

	now = now.Add(2 * time.Minute)
	if r := f.send(t, id, "tell me about Paris"); r.Route != RouteChat {
		t.Errorf("route = %q, want chat after expiry", r.Route)
	}
}

func TestHandleMessageErrors(t *testing.T) {
	f := newFixture(t)
	if _, err := f.a.HandleMessage(context.Background(), "x", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank: %v", err)
	}
	if _, err := f.a.HandleMessage(context.Background(), "missing", "hi"); !errors.Is(err, conversation.ErrNotFound) {
		t.Errorf("unknown conversation: %v", err)
	}
}

func TestConcurrentConversations(t *testing.T) {
	f := newFixture(t)
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = f.conversation(t)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for _, text := range []string{"book a hotel", "Jane", "jane@example.com"} {
				if _, err := f.a.HandleMessage(context.Background(), id, text); err != nil {
					t.Errorf("HandleMessage: %v", err)
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		sess, _ := f.store.LoadSession(context.Background(), id)
		if sess.Values[booking.SlotEmail] != "jane@example.com" {
			t.Errorf("%s: values = %v", id, sess.Values)
		}
	}
	if n := f.a.locks.size(); n != 0 {
		t.Errorf("lock table not drained: %d", n)
	}
}

func TestNewRequiresParts(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without a conversation store")
	}
}
