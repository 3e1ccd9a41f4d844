// ABOUTME: Vector index contract and the in-memory implementation with cosine top-k search
// ABOUTME: Chunks are grouped by source so re-ingesting a file replaces its old chunks

package rag

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Entry is a stored chunk with its embedding.
type Entry struct {
	ID     string
	Text   string
	Source string
	Chunk  int
	Vector []float32
}

// Index stores embedded chunks and answers similarity queries.
type Index interface {
	// ReplaceSource atomically swaps every chunk of source for entries.
	ReplaceSource(ctx context.Context, source string, entries []Entry) error
	// DeleteSource drops every chunk of source.
	DeleteSource(ctx context.Context, source string) error
	// Search returns up to k chunks by descending cosine similarity.
	// It returns ErrEmptyIndex when nothing has been stored and
	// ErrDimensionMismatch when a stored vector's length differs from vec's.
	Search(ctx context.Context, vec []float32, k int) ([]Document, error)
	// Dimension returns the length of the stored vectors, or 0 when empty.
	Dimension(ctx context.Context) (int, error)
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
	Close() error
}

// MemoryIndex is a goroutine-safe Index held in memory.
type MemoryIndex struct {
	mu       sync.RWMutex
	bySource map[string][]Entry
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{bySource: make(map[string][]Entry)}
}

// ReplaceSource swaps the chunks stored for source.
func (m *MemoryIndex) ReplaceSource(_ context.Context, source string, entries []Entry) error {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(cp) == 0 {
		delete(m.bySource, source)
		return nil
	}
	m.bySource[source] = cp
	return nil
}

// DeleteSource drops the chunks stored for source.
func (m *MemoryIndex) DeleteSource(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bySource, source)
	return nil
}

// Search scores every chunk against vec.
func (m *MemoryIndex) Search(_ context.Context, vec []float32, k int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.bySource) == 0 {
		return nil, ErrEmptyIndex
	}
	var all []Document
	for _, entries := range m.bySource {
		for _, e := range entries {
			if len(e.Vector) != len(vec) {
				return nil, mismatch(len(e.Vector), len(vec))
			}
			all = append(all, Document{ID: e.ID, Text: e.Text, Source: e.Source, Chunk: e.Chunk, Score: cosine(vec, e.Vector)})
		}
	}
	return topK(all, k), nil
}

// Dimension returns the vector length of an arbitrary stored chunk.
func (m *MemoryIndex) Dimension(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, entries := range m.bySource {
		if len(entries) > 0 {
			return len(entries[0].Vector), nil
		}
	}
	return 0, nil
}

// Count returns the number of stored chunks.
func (m *MemoryIndex) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, entries := range m.bySource {
		n += len(entries)
	}
	return n, nil
}

// Close is a no-op.
func (m *MemoryIndex) Close() error { return nil }

func mismatch(stored, query int) error {
	return fmt.Errorf("%w: index holds %d-dimension vectors, query has %d", ErrDimensionMismatch, stored, query)
}

// topK sorts by score descending, breaking ties by (source, chunk) so results are stable.
func topK(docs []Document, k int) []Document {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		if docs[i].Source != docs[j].Source {
			return docs[i].Source < docs[j].Source
		}
		return docs[i].Chunk < docs[j].Chunk
	})
	if k > 0 && len(docs) > k {
		docs = docs[:k]
	}
	return docs
}
