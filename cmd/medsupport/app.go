// ABOUTME: Wires settings into the running service: store, model client, retrieval, router and chat
// ABOUTME: The model client is built once and shared; without an API key it stays unconfigured

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mauromedda/medsupport-go/internal/chat"
	"github.com/mauromedda/medsupport-go/internal/config"
	"github.com/mauromedda/medsupport-go/internal/intent"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/query"
	"github.com/mauromedda/medsupport-go/internal/rag"
	"github.com/mauromedda/medsupport-go/internal/router"
	"github.com/mauromedda/medsupport-go/internal/store"
	"github.com/mauromedda/medsupport-go/internal/telemetry"
	"github.com/mauromedda/medsupport-go/pkg/ai"
	"github.com/mauromedda/medsupport-go/pkg/ai/provider/openai"
)

// app holds every long-lived component. close releases them in reverse order.
type app struct {
	cfg      *config.Settings
	db       store.Store
	provider *openai.Provider
	embedder ai.Embedder
	index    rag.Index
	usage    *telemetry.Tracker
	chat     *chat.Service
	auditor  *chat.Auditor
}

func openStore(ctx context.Context, s config.StoreSettings) (store.Store, error) {
	switch s.Driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverSQLite:
		if s.DSN != ":memory:" {
			if err := config.EnsureDir(filepath.Dir(s.DSN)); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		return store.OpenSQLite(ctx, s.DSN)
	case config.DriverPostgres:
		return store.OpenPostgres(ctx, s.DSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", s.Driver)
}

func openIndex(ctx context.Context, path string) (rag.Index, error) {
	if path == "" {
		return rag.NewMemoryIndex(), nil
	}
	if err := config.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	return rag.OpenSQLiteIndex(ctx, path)
}

// embeddingDim returns the vector length the selected embedder produces, or 0
// when the remote model is not a built-in one.
func embeddingDim(cfg *config.Settings, remote bool) int {
	if !remote {
		if cfg.RAG.EmbeddingDim > 0 {
			return cfg.RAG.EmbeddingDim
		}
		return rag.DefaultEmbeddingDim
	}
	if m := ai.FindModel(cfg.OpenAI.EmbeddingModel); m != nil {
		return m.Dimensions
	}
	return 0
}

// checkIndexDimension fails when the index holds vectors the embedder cannot be
// compared with. An empty index or an unknown want passes.
func checkIndexDimension(ctx context.Context, idx rag.Index, want int) error {
	if want == 0 {
		return nil
	}
	have, err := idx.Dimension(ctx)
	if err != nil {
		return err
	}
	if have != 0 && have != want {
		return fmt.Errorf("%w: index holds %d-dimension vectors, embedder produces %d", rag.ErrDimensionMismatch, have, want)
	}
	return nil
}

// seedIfEmpty loads the demo dataset unless the demo user already exists.
func seedIfEmpty(ctx context.Context, db store.Store) (bool, error) {
	_, err := db.PrimaryClient(ctx, store.DemoUserID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNoPrimaryClient) {
		return false, fmt.Errorf("checking for existing data: %w", err)
	}
	if err := db.Load(ctx, store.DemoDataset(timeNow())); err != nil {
		return false, fmt.Errorf("seeding demo data: %w", err)
	}
	return true, nil
}

func newApp(ctx context.Context, cfg *config.Settings) (*app, error) {
	a := &app{cfg: cfg, usage: telemetry.NewTracker()}

	db, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	a.db = db

	if cfg.SeedData || cfg.Store.Driver == config.DriverMemory {
		seeded, err := seedIfEmpty(ctx, db)
		if err != nil {
			a.close()
			return nil, err
		}
		if seeded {
			pilog.Info("loaded demo dataset")
		}
	}

	a.provider = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	a.provider.SetTimeout(cfg.OpenAI.Timeout)
	a.provider.SetEmbeddingModel(cfg.OpenAI.EmbeddingModel)

	if a.provider.Configured() {
		a.embedder = a.provider
		for _, id := range []string{cfg.OpenAI.Model, cfg.OpenAI.EmbeddingModel} {
			if ai.FindModel(id) == nil {
				pilog.Warn("unknown model %q; check openai.model and openai.embedding_model", id)
			}
		}
	} else {
		pilog.Warn("no OpenAI API key: using keyword intent classification and hash embeddings")
		a.embedder = rag.HashEmbedder{Dim: cfg.RAG.EmbeddingDim}
	}

	a.index, err = openIndex(ctx, cfg.RAG.IndexPath)
	if err != nil {
		a.close()
		return nil, err
	}
	if err := checkIndexDimension(ctx, a.index, embeddingDim(cfg, a.provider.Configured())); err != nil {
		pilog.Warn("%v; document answers are off until the index is rebuilt: remove %s and run `medsupport ingest`",
			err, cfg.RAG.IndexPath)
	}

	cls := intent.ClassifierConfig{Timeout: cfg.OpenAI.Timeout}
	if a.provider.Configured() {
		metered := telemetry.MeteredCompleter{Completer: a.provider, Tracker: a.usage}
		cls.Model = intent.NewCompleterClassifier(metered, cfg.OpenAI.Model)
	}

	retriever := rag.NewRetriever(a.index, a.embedder, cfg.RAG.Timeout)
	a.chat = chat.New(chat.Config{
		Directory:     db,
		Conversations: db,
		Classifier:    intent.NewClassifier(cls),
		Router:        router.New(db, retriever, query.WithMaxResults(cfg.RAG.MaxResults)),
	})
	a.chat.Subscribe("usage", chat.RecordUsage(a.usage))

	if cfg.AuditEnabled() {
		a.auditor = chat.NewKafkaAuditor(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.chat.Subscribe("kafka-audit", a.auditor.Handler())
		pilog.Info("auditing exchanges to kafka topic %s", cfg.Kafka.Topic)
	}
	pilog.Debug("chat service ready with %d exchange subscribers", a.chat.Subscribers())
	return a, nil
}

func (a *app) ingester() *rag.Ingester {
	return &rag.Ingester{
		Index:     a.index,
		Embedder:  a.embedder,
		ChunkSize: a.cfg.RAG.ChunkSize,
		Overlap:   a.cfg.RAG.ChunkOverlap,
	}
}

func (a *app) close() {
	if a.auditor != nil {
		if err := a.auditor.Close(); err != nil {
			pilog.Warn("closing audit writer: %v", err)
		}
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			pilog.Warn("closing index: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			pilog.Warn("closing store: %v", err)
		}
	}
}
