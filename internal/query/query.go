// ABOUTME: Shared types for the domain answer builders: Request, Result, provenance tags
// ABOUTME: Builders turn one message into prose plus the data source that answered it

package query

import (
	"context"
	"time"

	"github.com/mauromedda/medsupport-go/internal/phrase"
	"github.com/mauromedda/medsupport-go/internal/rag"
	"github.com/mauromedda/medsupport-go/internal/store"
)

// DataSource records which path produced an answer. It is persisted with every chat log.
type DataSource string

const (
	SourceSQL   DataSource = "sql"
	SourceRAG   DataSource = "rag"
	SourceNone  DataSource = "none"
	SourceError DataSource = "error"
)

// Request is one user message in a resolved client scope.
type Request struct {
	ClientID int64
	UserID   int64
	Message  string
}

// Result is a builder's answer.
type Result struct {
	Text   string
	Source DataSource
}

// Builder answers messages for one domain. Not-found and short-input cases are
// ordinary Results; data-access failures are returned as errors.
type Builder interface {
	Build(ctx context.Context, req Request) (Result, error)
}

// Retriever is the document search collaborator.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]rag.Document, error)
}

// Option configures a builder.
type Option func(*options)

type options struct {
	now     func() time.Time
	maxDocs int
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, maxDocs: defaultMaxDocs}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithClock sets the reference time for relative date phrases.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxResults sets how many chunks the document builder retrieves. Values
// below 1 keep the default of 5.
func WithMaxResults(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.maxDocs = k
		}
	}
}

func sqlResult(text string) (Result, error) {
	return Result{Text: text, Source: SourceSQL}, nil
}

// scopedFilter applies the parsed status and date range to the client's rows.
func scopedFilter(clientID int64, sig phrase.Signals) store.Filter {
	f := store.Filter{ClientID: clientID}
	if sig.Status != "" {
		f.Statuses = []string{sig.Status}
	}
	if sig.Range != nil {
		f.Period = &store.Period{Start: sig.Range.Start, End: sig.Range.End}
	}
	return f
}

// filterDetail describes the active filters: " with status 'x' in the requested date range".
func filterDetail(sig phrase.Signals) string {
	var d string
	if sig.Status != "" {
		d = " with status '" + sig.Status + "'"
	}
	if sig.Range != nil {
		d += " in the requested date range"
	}
	return d
}

// first returns the first row of a list query, or false when empty.
func first[T any](rows []T) (T, bool) {
	var zero T
	if len(rows) == 0 {
		return zero, false
	}
	return rows[0], true
}
