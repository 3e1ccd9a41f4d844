// ABOUTME: Wiring tests: the memory-store app answers structured and document questions offline
// ABOUTME: No API key is set, so classification is keyword-based and embeddings are hashed

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mauromedda/medsupport-go/internal/config"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/query"
	"github.com/mauromedda/medsupport-go/internal/rag"
	"github.com/mauromedda/medsupport-go/internal/store"
)

func offlineSettings(t *testing.T) *config.Settings {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	pilog.SetOutput(io.Discard)

	cfg := config.Defaults()
	cfg.Store.Driver = config.DriverMemory
	cfg.RAG.IndexPath = ""
	cfg.RAG.DocsDir = t.TempDir()
	return cfg
}

func TestApp_AnswersFromSeededMemoryStore(t *testing.T) {
	cfg := offlineSettings(t)
	ctx := context.Background()

	a, err := newApp(ctx, cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	if a.provider.Configured() {
		t.Fatal("provider configured without an API key")
	}

	reply, err := a.chat.Ask(ctx, store.DemoUserID, "how many invoices do I have")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply.Source != query.SourceSQL {
		t.Errorf("Source = %q, want sql (reply %q)", reply.Source, reply.Text)
	}
	if got := a.usage.Summary().TotalMessages; got != 1 {
		t.Errorf("usage TotalMessages = %d, want 1", got)
	}
	// chat-log persistence and usage stats; no Kafka brokers configured.
	if got := a.chat.Subscribers(); got != 2 {
		t.Errorf("Subscribers = %d, want 2", got)
	}
}

func TestOpenIndex_CreatesParentDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "data", "index.db")
	idx, err := openIndex(context.Background(), path)
	if err != nil {
		t.Fatalf("openIndex: %v", err)
	}
	defer idx.Close()
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("index directory not created: %v", err)
	}
}

func TestCheckIndexDimension(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	idx := rag.NewMemoryIndex()
	if err := checkIndexDimension(ctx, idx, 1536); err != nil {
		t.Fatalf("empty index: %v", err)
	}

	vecs, _ := rag.HashEmbedder{Dim: 128}.Embed(ctx, []string{"warranty terms"})
	if err := idx.ReplaceSource(ctx, "w.md", []rag.Entry{{ID: "w0", Source: "w.md", Vector: vecs[0]}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"same dimension", 128, false},
		{"remote embedder", 1536, true},
		{"unknown remote model", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkIndexDimension(ctx, idx, tt.want)
			if got := errors.Is(err, rag.ErrDimensionMismatch); got != tt.wantErr {
				t.Errorf("checkIndexDimension(%d) = %v; want mismatch %v", tt.want, err, tt.wantErr)
			}
		})
	}
}

func TestEmbeddingDim(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	if got := embeddingDim(cfg, false); got != 128 {
		t.Errorf("hash embedder dim = %d, want 128", got)
	}
	if got := embeddingDim(cfg, true); got != 1536 {
		t.Errorf("text-embedding-3-small dim = %d, want 1536", got)
	}
	cfg.OpenAI.EmbeddingModel = "custom-embedder"
	if got := embeddingDim(cfg, true); got != 0 {
		t.Errorf("unknown model dim = %d, want 0", got)
	}
}

func TestApp_IngestsDocsOnStartup(t *testing.T) {
	cfg := offlineSettings(t)
	ctx := context.Background()

	spec := "The Digital X-Ray System DXR-3000 supports a 43x43 cm detector and 150 kV generator."
	if err := os.WriteFile(filepath.Join(cfg.RAG.DocsDir, "dxr3000.md"), []byte(spec), 0o600); err != nil {
		t.Fatal(err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	if err := ingestIfEmpty(ctx, a); err != nil {
		t.Fatalf("ingestIfEmpty: %v", err)
	}
	if n, _ := a.index.Count(ctx); n != 1 {
		t.Fatalf("indexed chunks = %d, want 1", n)
	}

	reply, err := a.chat.Ask(ctx, store.DemoUserID, "what are the specs of the DXR-3000")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply.Source != query.SourceRAG {
		t.Errorf("Source = %q, want rag (reply %q)", reply.Source, reply.Text)
	}
	if !strings.Contains(reply.Text, "dxr3000.md") {
		t.Errorf("reply does not cite the source: %q", reply.Text)
	}
}

func TestSeedIfEmpty_Idempotent(t *testing.T) {
	t.Parallel()

	db := store.NewMemory()
	ctx := context.Background()

	seeded, err := seedIfEmpty(ctx, db)
	if err != nil || !seeded {
		t.Fatalf("first seed = %v, %v; want true, nil", seeded, err)
	}
	seeded, err = seedIfEmpty(ctx, db)
	if err != nil || seeded {
		t.Fatalf("second seed = %v, %v; want false, nil", seeded, err)
	}
}
