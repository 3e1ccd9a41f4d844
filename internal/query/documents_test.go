// ABOUTME: Tests for the document builder: previews, citations, and the no-documents reply
// ABOUTME: Retrieval errors degrade to the no-documents reply instead of failing

package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mauromedda/medsupport-go/internal/rag"
)

func TestDocuments_ComposesAnswer(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 350)
	docs := &fakeRetriever{docs: []rag.Document{
		{Text: long, Source: "specs.md", Chunk: 0},
		{Text: "Second chunk.", Source: "", Chunk: 2},
		{Text: "Third chunk.", Source: "iso.txt", Chunk: 1},
		{Text: "Fourth chunk.", Source: "ce.txt", Chunk: 5},
	}}

	got, err := NewDocuments(docs).Build(context.Background(), demoRequest("what are the specs of the DXR-3000"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "Here's what I found in the documentation (summarized):\n\n" +
		strings.Repeat("a", 300) + "\n\nSecond chunk." +
		"\n\nSources:\n- specs.md (chunk 0)\n- doc (chunk 2)\n- iso.txt (chunk 1)"
	if got.Text != want {
		t.Errorf("Text =\n%q\nwant\n%q", got.Text, want)
	}
	if got.Source != SourceRAG {
		t.Errorf("Source = %q; want %q", got.Source, SourceRAG)
	}
}

func TestDocuments_NoDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		docs Retriever
	}{
		{"nil retriever", nil},
		{"empty index", &fakeRetriever{}},
		{"retrieval error", &fakeRetriever{err: errors.New("timeout")}},
		{"index from another embedder", staleRetriever(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewDocuments(tt.docs).Build(context.Background(), demoRequest("iso certificates"))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got.Text != noDocumentsReply {
				t.Errorf("Text = %q; want %q", got.Text, noDocumentsReply)
			}
			if got.Source != SourceNone {
				t.Errorf("Source = %q; want %q", got.Source, SourceNone)
			}
		})
	}
}

func TestDocuments_AsksForFiveChunks(t *testing.T) {
	t.Parallel()

	var docs []rag.Document
	for i := 0; i < 8; i++ {
		docs = append(docs, rag.Document{Text: "x", Chunk: i})
	}
	f := &fakeRetriever{docs: docs}
	got, _ := NewDocuments(f).Build(context.Background(), demoRequest("spare parts"))
	if n := strings.Count(got.Text, "(chunk "); n != 3 {
		t.Errorf("cited sources = %d; want 3", n)
	}
	if f.lastK != 5 {
		t.Errorf("k = %d; want 5", f.lastK)
	}
}

func TestDocuments_WithMaxResults(t *testing.T) {
	t.Parallel()

	f := &fakeRetriever{docs: []rag.Document{{Text: "x"}}}
	if _, err := NewDocuments(f, WithMaxResults(8)).Build(context.Background(), demoRequest("spare parts")); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.lastK != 8 {
		t.Errorf("k = %d; want 8", f.lastK)
	}

	f = &fakeRetriever{docs: []rag.Document{{Text: "x"}}}
	if _, err := NewDocuments(f, WithMaxResults(0)).Build(context.Background(), demoRequest("spare parts")); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.lastK != 5 {
		t.Errorf("k = %d; want default 5", f.lastK)
	}
}
