// Package rag ingests documents into a vector index and answers questions
// from the most similar chunks.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/guidepro/guidepro/internal/document"
	"github.com/guidepro/guidepro/internal/embeddings"
	"github.com/guidepro/guidepro/internal/llm"
	"github.com/guidepro/guidepro/internal/vectordb"
)

const (
	// EmptyMessage is returned by Query and Answer when nothing is ingested.
	EmptyMessage = "No documents have been uploaded yet."
	// NoMatchMessage is returned when the index yields no results.
	NoMatchMessage = "I couldn't find anything relevant in the uploaded documents."
	// Separator joins retrieved chunks in a Query answer.
	Separator = "\n\n---\n\n"
	// DefaultTopK is the number of chunks Answer retrieves.
	DefaultTopK = 3
)

// Options configures a Store. Index, Embedder and Chunker are required.
type Options struct {
	Index     vectordb.Index
	Embedder  embeddings.Embedder
	Extractor document.Extractor
	Chunker   *document.Chunker

	// Provider synthesizes answers from retrieved chunks when Synthesize is
	// set. Without it Answer returns the raw retrieval text.
	Provider   llm.Provider
	Synthesize bool
	TopK       int

	// Timeout bounds every embedding and completion call. Zero disables it.
	Timeout time.Duration

	// PersistDir is where a persistable index is saved after each change.
	PersistDir string

	Logger *slog.Logger
}

// Store is the retrieval store. Ingest and Reset are serialized; queries run
// concurrently under the index's own read lock.
type Store struct {
	opts   Options
	logger *slog.Logger

	// writeMu serializes Ingest and Reset so reports and persistence see a
	// consistent index.
	writeMu sync.Mutex
}

// NewStore validates opts and returns a Store.
func NewStore(opts Options) (*Store, error) {
	if opts.Index == nil || opts.Embedder == nil || opts.Chunker == nil {
		return nil, fmt.Errorf("rag store needs an index, an embedder and a chunker")
	}
	if opts.Extractor == nil {
		opts.Extractor = document.NewExtractor()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{opts: opts, logger: logger}, nil
}

// Load restores a persisted index from PersistDir, if both are available.
func (s *Store) Load(ctx context.Context) error {
	p, ok := s.opts.Index.(vectordb.Persister)
	if !ok || s.opts.PersistDir == "" {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := p.Load(ctx, s.opts.PersistDir); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	if d := s.opts.Index.Dimensions(); d != 0 && d != s.opts.Embedder.Dimensions() {
		return fmt.Errorf("persisted index has %d dimensions, embedder %s has %d: %w",
			d, s.opts.Embedder.Name(), s.opts.Embedder.Dimensions(), vectordb.ErrDimensionMismatch)
	}
	return nil
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	return s.opts.Index.Len()
}

// Reset drops every chunk.
func (s *Store) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.opts.Index.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	s.persist(ctx)
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *Store) persist(ctx context.Context) {
	p, ok := s.opts.Index.(vectordb.Persister)
	if !ok || s.opts.PersistDir == "" {
		return
	}
	if err := p.Persist(ctx, s.opts.PersistDir); err != nil {
		s.logger.Error("persisting index failed", "dir", s.opts.PersistDir, "error", err)
	}
}

// Search embeds text and returns the topK most similar chunks.
func (s *Store) Search(ctx context.Context, text string, topK int) ([]vectordb.SearchResult, error) {
	if topK <= 0 {
		topK = s.opts.TopK
	}
	if s.opts.Index.Len() == 0 {
		return nil, nil
	}

	ectx, cancel := s.withTimeout(ctx)
	vec, err := embeddings.EmbedOne(ectx, s.opts.Embedder, text)
	cancel()
	if err != nil {
		return nil, err
	}
	return s.opts.Index.Search(ctx, vec, topK)
}

// Query returns the text of the topK most similar chunks joined by
// Separator. Expected failures come back as a user-facing message.
func (s *Store) Query(ctx context.Context, text string, topK int) string {
	if s.opts.Index.Len() == 0 {
		return EmptyMessage
	}
	results, err := s.Search(ctx, text, topK)
	if err != nil {
		s.logger.Warn("document query failed", "error", err)
		return providerMessage(err)
	}
	if len(results) == 0 {
		return NoMatchMessage
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Document.Text
	}
	return strings.Join(parts, Separator)
}

// Answer retrieves context for question and, when synthesis is enabled,
// asks the completion provider to answer from it. A failed synthesis falls
// back to the retrieval text.
func (s *Store) Answer(ctx context.Context, question string) string {
	if s.opts.Index.Len() == 0 {
		return EmptyMessage
	}
	results, err := s.Search(ctx, question, s.opts.TopK)
	if err != nil {
		s.logger.Warn("document query failed", "error", err)
		return providerMessage(err)
	}
	if len(results) == 0 {
		return NoMatchMessage
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Document.Text
	}
	retrieved := strings.Join(parts, Separator)
	if !s.opts.Synthesize || s.opts.Provider == nil {
		return retrieved
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	resp, err := s.opts.Provider.Complete(cctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: synthesisPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", retrieved, question)},
		},
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		s.logger.Warn("answer synthesis failed, returning retrieved text", "error", err)
		return retrieved
	}
	return strings.TrimSpace(resp.Content)
}

const synthesisPrompt = "You are GuidePro AI, a travel assistant. Answer the question using only the provided context from the user's documents. If the context does not contain the answer, say so briefly."

// providerMessage turns an embedding failure into a chat-visible string.
func providerMessage(err error) string {
	switch embeddings.KindOf(err) {
	case embeddings.KindAuth:
		return "Document search is unavailable: the embedding provider rejected its credentials."
	case embeddings.KindInputTooLarge:
		return "That question is too long to search the documents. Please shorten it."
	case embeddings.KindRateLimited:
		return "Document search is busy right now. Please try again in a moment."
	default:
		return "Document search is temporarily unavailable. Please try again later."
	}
}
