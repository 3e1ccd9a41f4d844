// ABOUTME: Parallel document ingestion: load, chunk, embed, and replace a source's chunks
// ABOUTME: Files are processed concurrently with a bounded errgroup; chunk ids are random UUIDs

package rag

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/pkg/ai"
)

const (
	defaultWorkers = 4
	embedBatchSize = 64
)

// Ingester turns files into indexed chunks.
type Ingester struct {
	Index     Index
	Embedder  ai.Embedder
	ChunkSize int
	Overlap   int
	Workers   int
}

// Stats summarizes one ingestion run.
type Stats struct {
	Files  int
	Chunks int
}

// IngestDir ingests every supported file under dir. Sources are recorded relative
// to dir with forward slashes. The first failure cancels the remaining files.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (Stats, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		pilog.Info("rag: no documents found in %s", dir)
		return Stats{}, nil
	}

	workers := in.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var chunks atomic.Int64
	for _, path := range files {
		g.Go(func() error {
			n, err := in.IngestFile(gctx, dir, path)
			if err != nil {
				return err
			}
			chunks.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return Stats{Files: len(files), Chunks: int(chunks.Load())}, nil
}

// IngestFile replaces the indexed chunks of path and returns how many were stored.
func (in *Ingester) IngestFile(ctx context.Context, root, path string) (int, error) {
	source := SourceName(root, path)
	text, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	size, overlap := in.ChunkSize, in.Overlap
	if size <= 0 {
		size, overlap = DefaultChunkSize, DefaultChunkOverlap
	}
	parts := Chunk(text, size, overlap)

	entries := make([]Entry, len(parts))
	for start := 0; start < len(parts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(parts))
		vecs, err := in.Embedder.Embed(ctx, parts[start:end])
		if err != nil {
			return 0, fmt.Errorf("embedding %s: %w", source, err)
		}
		if len(vecs) != end-start {
			return 0, fmt.Errorf("embedding %s: got %d vectors for %d chunks", source, len(vecs), end-start)
		}
		for i, v := range vecs {
			entries[start+i] = Entry{
				ID:     uuid.NewString(),
				Text:   parts[start+i],
				Source: source,
				Chunk:  start + i,
				Vector: v,
			}
		}
	}

	if err := in.Index.ReplaceSource(ctx, source, entries); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", source, err)
	}
	pilog.Info("rag: ingested %d chunks from %s", len(entries), source)
	return len(entries), nil
}

// SourceName is path relative to root with forward slashes, or the base name
// when path is outside root.
func SourceName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
