// ABOUTME: Default builder for intents without structured data: answers from retrieved documents
// ABOUTME: Two chunk previews plus a source list; a "please ingest" reply when nothing is found

package query

import (
	"context"
	"fmt"
	"strings"

	pilog "github.com/mauromedda/medsupport-go/internal/log"
)

const (
	defaultMaxDocs   = 5
	documentsShown   = 2
	previewChars     = 300
	maxCitedSources  = 3
	noDocumentsReply = "I couldn't find relevant documents yet. Please add docs and run the ingestion script."
)

// Documents answers from the document index.
type Documents struct {
	docs Retriever
	opts options
}

// NewDocuments creates the default builder. A nil retriever always yields the no-documents reply.
func NewDocuments(docs Retriever, opts ...Option) *Documents {
	return &Documents{docs: docs, opts: newOptions(opts)}
}

// Build answers one message from documentation. Retrieval failures are logged and
// treated as an empty result.
func (b *Documents) Build(ctx context.Context, req Request) (Result, error) {
	if b.docs == nil {
		return Result{Text: noDocumentsReply, Source: SourceNone}, nil
	}
	docs, err := b.docs.Query(ctx, req.Message, b.opts.maxDocs)
	if err != nil {
		pilog.Warn("document lookup failed: %v", err)
		docs = nil
	}
	if len(docs) == 0 {
		return Result{Text: noDocumentsReply, Source: SourceNone}, nil
	}

	cited := docs
	if len(cited) > maxCitedSources {
		cited = cited[:maxCitedSources]
	}
	sources := make([]string, len(cited))
	for i, d := range cited {
		sources[i] = fmt.Sprintf("- %s (chunk %d)", d.SourceLabel(), d.Chunk)
	}

	var sb strings.Builder
	sb.WriteString("Here's what I found in the documentation (summarized):\n\n")
	sb.WriteString(joinTexts(docs, documentsShown, previewChars))
	sb.WriteString("\n\nSources:\n")
	sb.WriteString(strings.Join(sources, "\n"))
	return Result{Text: sb.String(), Source: SourceRAG}, nil
}
