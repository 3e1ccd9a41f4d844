// ABOUTME: Warranty and AMC questions: explanatory phrasing goes to documents first
// ABOUTME: Structured answers pair active warranty and AMC counts, or list/latest by end date

package query

import (
	"context"
	"fmt"
	"strings"

	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/phrase"
	"github.com/mauromedda/medsupport-go/internal/rag"
	"github.com/mauromedda/medsupport-go/internal/store"
)

var explainPhrases = []string{"what is", "explain", "tell me about", "period", "how long"}

const (
	warrantyDocsK     = 5
	warrantyDocsShown = 2
)

// WarrantyStore is the data access the warranty builder needs.
type WarrantyStore interface {
	CountWarranties(ctx context.Context, f store.Filter) (int, error)
	ListWarranties(ctx context.Context, f store.Filter) ([]store.Warranty, error)
	CountAMCContracts(ctx context.Context, f store.Filter) (int, error)
}

// Warranties answers warranty and AMC contract questions.
type Warranties struct {
	db   WarrantyStore
	docs Retriever
	opts options
}

// NewWarranties creates the warranty builder. docs may be nil, in which case
// explanatory questions go straight to the structured path.
func NewWarranties(db WarrantyStore, docs Retriever, opts ...Option) *Warranties {
	return &Warranties{db: db, docs: docs, opts: newOptions(opts)}
}

// Build answers one warranty question.
func (b *Warranties) Build(ctx context.Context, req Request) (Result, error) {
	text := phrase.Normalize(req.Message)

	if phrase.ContainsAny(text, explainPhrases) {
		if res, ok := b.fromDocs(ctx, req.Message); ok {
			return res, nil
		}
	}

	limit := phrase.ParseLimit(req.Message, phrase.DefaultLimit, phrase.MaxLimit)
	wantsCount := phrase.WantsCount(text)
	wantsList := phrase.WantsList(text) && !wantsCount
	wantsLatest := phrase.ContainsAny(text, phrase.LatestWords) && !(wantsCount || wantsList)

	scope := store.Filter{ClientID: req.ClientID}
	switch {
	case wantsList:
		f := scope
		f.Sort, f.Limit = store.SortAsc, limit
		rows, err := b.db.ListWarranties(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("listing warranties: %w", err)
		}
		if len(rows) == 0 {
			return sqlResult("No warranties found.")
		}
		lines := make([]string, len(rows))
		for i, w := range rows {
			lines[i] = fmt.Sprintf("- Equip %d | %s | %s to %s", w.EquipmentID, w.Status, formatDay(w.StartDate), formatDay(w.EndDate))
		}
		return sqlResult("Warranties:\n" + strings.Join(lines, "\n"))

	case wantsLatest:
		f := scope
		f.Sort, f.Limit = store.SortDesc, 1
		rows, err := b.db.ListWarranties(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("finding latest warranty: %w", err)
		}
		w, ok := first(rows)
		if !ok {
			return sqlResult("No warranties found.")
		}
		return sqlResult(fmt.Sprintf("Most recent warranty spans %s to %s with status '%s'.",
			formatDay(w.StartDate), formatDay(w.EndDate), w.Status))
	}

	// Count and overview give the same paired answer.
	return b.activeCounts(ctx, req.ClientID)
}

func (b *Warranties) activeCounts(ctx context.Context, clientID int64) (Result, error) {
	active := store.Filter{ClientID: clientID, Statuses: []string{"active"}}
	w, err := b.db.CountWarranties(ctx, active)
	if err != nil {
		return Result{}, fmt.Errorf("counting warranties: %w", err)
	}
	a, err := b.db.CountAMCContracts(ctx, active)
	if err != nil {
		return Result{}, fmt.Errorf("counting AMC contracts: %w", err)
	}
	return sqlResult(fmt.Sprintf("Active warranties: %d. Active AMC contracts: %d.", w, a))
}

// fromDocs answers from retrieved documentation. It reports false when retrieval
// failed or found nothing, so the caller continues with the structured path.
func (b *Warranties) fromDocs(ctx context.Context, msg string) (Result, bool) {
	if b.docs == nil {
		return Result{}, false
	}
	docs, err := b.docs.Query(ctx, msg, warrantyDocsK)
	if err != nil {
		pilog.Warn("warranty document lookup failed, using structured data: %v", err)
		return Result{}, false
	}
	if len(docs) == 0 {
		return Result{}, false
	}
	return Result{Text: "From documentation: " + joinTexts(docs, warrantyDocsShown, 0), Source: SourceRAG}, true
}

// joinTexts joins the first n document texts with blank lines, each cut to
// maxChars characters when maxChars > 0.
func joinTexts(docs []rag.Document, n, maxChars int) string {
	if len(docs) > n {
		docs = docs[:n]
	}
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Text
		if maxChars > 0 {
			parts[i] = preview(d.Text, maxChars)
		}
	}
	return strings.Join(parts, "\n\n")
}
