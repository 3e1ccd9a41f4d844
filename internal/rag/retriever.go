// ABOUTME: Query-side retrieval: embed the question and search the index under a deadline
// ABOUTME: An empty index is reported as no documents rather than as a failure

package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mauromedda/medsupport-go/pkg/ai"
)

// DefaultQueryTimeout bounds one retrieval including the embedding call.
const DefaultQueryTimeout = 10 * time.Second

// Retriever answers similarity queries.
type Retriever struct {
	index    Index
	embedder ai.Embedder
	timeout  time.Duration
}

// NewRetriever creates a Retriever. A zero timeout uses DefaultQueryTimeout.
func NewRetriever(index Index, embedder ai.Embedder, timeout time.Duration) *Retriever {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Retriever{index: index, embedder: embedder, timeout: timeout}
}

// Query returns up to k chunks most similar to text.
func (r *Retriever) Query(ctx context.Context, text string, k int) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vecs, err := r.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors", len(vecs))
	}

	docs, err := r.index.Search(ctx, vecs[0], k)
	if errors.Is(err, ErrEmptyIndex) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return docs, nil
}
