// ABOUTME: Retrieved chunk type shared by the vector index, retriever and answer builders
// ABOUTME: Metadata mirrors what ingestion records per chunk: source file and chunk index

package rag

import "errors"

var (
	// ErrEmptyIndex is returned by Index.Search when nothing has been ingested.
	ErrEmptyIndex = errors.New("rag: index is empty")
	// ErrDimensionMismatch is returned by Index.Search when stored vectors were
	// produced by a different embedder than the query vector.
	ErrDimensionMismatch = errors.New("rag: embedding dimension mismatch")
)

// Document is one chunk returned by a similarity query.
type Document struct {
	ID     string
	Text   string
	Source string // file name relative to the ingested directory; empty when unknown
	Chunk  int
	Score  float64
}

// SourceLabel returns Source, or "doc" when the chunk has no recorded source.
func (d Document) SourceLabel() string {
	if d.Source == "" {
		return "doc"
	}
	return d.Source
}
