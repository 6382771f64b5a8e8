package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/guidepro/guidepro/internal/assistant"
	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/config"
	"github.com/guidepro/guidepro/internal/conversation"
	"github.com/guidepro/guidepro/internal/db"
	"github.com/guidepro/guidepro/internal/document"
	"github.com/guidepro/guidepro/internal/email"
	"github.com/guidepro/guidepro/internal/embeddings"
	"github.com/guidepro/guidepro/internal/intent"
	"github.com/guidepro/guidepro/internal/llm"
	"github.com/guidepro/guidepro/internal/rag"
	"github.com/guidepro/guidepro/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `guidepro init` to create a config file", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *db.DB
	bookings *booking.SQLiteRepository
	docs     *rag.Store
	provider llm.Provider
	engine   *booking.Engine

	closeLog func() error
}

// newApp loads the config and builds every component except the assistant,
// which needs a conversation store chosen by the command.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger, closeLog := config.SetupLogger(cfg.LogFile, level)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, closeLog: closeLog}

	dbPath := filepath.Join(cfg.DataDir, "guidepro.db")
	a.db, err = db.Open(dbPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.bookings = booking.NewSQLiteRepository(a.db)

	a.provider, err = llm.FromConfig(cfg)
	if err != nil {
		logger.Warn("completion provider unavailable, chat answers are disabled", "error", err)
	}

	a.docs, err = buildDocuments(ctx, cfg, a.provider, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.engine = booking.NewEngine(a.bookings, buildNotifier(cfg, logger),
		booking.WithTimeout(cfg.ProviderTimeout()),
		booking.WithDateOrder(cfg.Booking.EnforceDateOrder),
		booking.WithSessionTTL(cfg.SessionTTL()),
		booking.WithLogger(logger),
	)
	return a, nil
}

// assistant wires the turn router over the given conversation store.
func (a *app) assistant(store conversation.Store) (*assistant.Assistant, error) {
	return assistant.New(assistant.Options{
		Conversations: store,
		Engine:        a.engine,
		Classifier:    intent.NewKeywordClassifier(a.cfg.Intent.BookingKeywords, a.cfg.Intent.DocumentKeywords),
		Documents:     a.docs,
		Provider:      a.provider,
		Timeout:       a.cfg.ProviderTimeout(),
		Logger:        a.logger,
	})
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}

func buildDocuments(ctx context.Context, cfg *config.Config, provider llm.Provider, logger *slog.Logger) (*rag.Store, error) {
	embedder, err := embeddings.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	chunker, err := document.NewChunker(cfg.RAG.ChunkWords, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	var index vectordb.Index
	switch cfg.RAG.Index {
	case config.IndexChromem:
		index, err = vectordb.NewChromemIndex()
		if err != nil {
			return nil, fmt.Errorf("creating vector index: %w", err)
		}
	default:
		index = vectordb.NewFlatIndex()
	}

	store, err := rag.NewStore(rag.Options{
		Index:      index,
		Embedder:   embedder,
		Chunker:    chunker,
		Provider:   provider,
		Synthesize: cfg.RAG.Synthesize,
		TopK:       cfg.RAG.TopK,
		Timeout:    cfg.ProviderTimeout(),
		PersistDir: filepath.Join(cfg.DataDir, "vectordb"),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("%w\nRun `guidepro ingest --replace` after changing the embedding provider", err)
	}
	logger.Debug("document store ready", "embedder", embedder.Name(), "index", cfg.RAG.Index, "chunks", store.Len())
	return store, nil
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) booking.Notifier {
	if cfg.Email.Provider != "sendgrid" {
		return email.NoopSender{}
	}
	apiKey := os.Getenv(config.SendGridKeyEnvVar)
	if apiKey == "" {
		logger.Warn("confirmation emails disabled", "reason", config.SendGridKeyEnvVar+" is not set")
		return email.NoopSender{}
	}
	return email.NewSendGridSender(apiKey, cfg.Email.FromEmail, cfg.Email.FromName, "")
}
