// ABOUTME: Invoice questions: count, outstanding sum, latest, list, or a pending overview
// ABOUTME: "Outstanding" means pending plus overdue; summing paid invoices is not a sum question

package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauromedda/medsupport-go/internal/phrase"
	"github.com/mauromedda/medsupport-go/internal/store"
)

var (
	invoiceStatuses     = []string{"pending", "paid", "overdue"}
	outstandingStatuses = []string{"pending", "overdue"}
	invoiceLatestWords  = []string{"latest", "recent", "last invoice"}
)

// InvoiceStore is the data access the invoice builder needs.
type InvoiceStore interface {
	CountInvoices(ctx context.Context, f store.Filter) (int, error)
	ListInvoices(ctx context.Context, f store.Filter) ([]store.Invoice, error)
	SumInvoices(ctx context.Context, f store.Filter) (float64, error)
}

// Invoices answers billing and payment questions.
type Invoices struct {
	db   InvoiceStore
	opts options
}

// NewInvoices creates the invoice builder.
func NewInvoices(db InvoiceStore, opts ...Option) *Invoices {
	return &Invoices{db: db, opts: newOptions(opts)}
}

// Build answers one invoice question.
func (b *Invoices) Build(ctx context.Context, req Request) (Result, error) {
	sig := phrase.Parse(req.Message, invoiceStatuses, b.opts.now())
	f := scopedFilter(req.ClientID, sig)

	wantsCount := phrase.WantsCount(sig.Text)
	wantsSum := phrase.WantsSum(sig.Text) && (sig.Status == "" || sig.Status == "pending" || sig.Status == "overdue")
	wantsLatest := phrase.ContainsAny(sig.Text, invoiceLatestWords) && !(wantsCount || wantsSum)
	wantsList := phrase.WantsList(sig.Text) && !(wantsCount || wantsSum)

	switch {
	case wantsCount:
		n, err := b.db.CountInvoices(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("counting invoices: %w", err)
		}
		return sqlResult(fmt.Sprintf("You have %d invoices%s.", n, filterDetail(sig)))

	case wantsSum:
		if sig.Status == "" {
			f.Statuses = outstandingStatuses
		}
		total, err := b.db.SumInvoices(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("summing invoices: %w", err)
		}
		return sqlResult(fmt.Sprintf("Total outstanding amount is %s.", formatAmount(total)))

	case wantsLatest:
		inv, ok, err := b.latest(ctx, f)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return sqlResult("No invoices found for your criteria.")
		}
		return sqlResult(fmt.Sprintf("Latest invoice dated %s has status '%s' and amount %s %s.",
			formatDay(inv.InvoiceDate), inv.Status, formatAmount(inv.Amount), currencyOrUSD(inv.Currency)))

	case wantsList:
		f.Sort, f.Limit = store.SortDesc, sig.Limit
		rows, err := b.db.ListInvoices(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("listing invoices: %w", err)
		}
		if len(rows) == 0 {
			return sqlResult("No invoices found for your criteria.")
		}
		lines := make([]string, len(rows))
		for i, inv := range rows {
			lines[i] = fmt.Sprintf("- %s | %s | %s %s",
				formatDay(inv.InvoiceDate), inv.Status, formatAmount(inv.Amount), currencyOrUSD(inv.Currency))
		}
		return sqlResult("Here are the recent invoices:\n" + strings.Join(lines, "\n"))
	}

	return b.overview(ctx, req.ClientID, f)
}

// overview reports pending count and outstanding total over all of the client's
// invoices, plus the latest invoice under the message's filters.
func (b *Invoices) overview(ctx context.Context, clientID int64, f store.Filter) (Result, error) {
	pending, err := b.db.CountInvoices(ctx, store.Filter{ClientID: clientID, Statuses: []string{"pending"}})
	if err != nil {
		return Result{}, fmt.Errorf("counting pending invoices: %w", err)
	}
	total, err := b.db.SumInvoices(ctx, store.Filter{ClientID: clientID, Statuses: outstandingStatuses})
	if err != nil {
		return Result{}, fmt.Errorf("summing outstanding invoices: %w", err)
	}
	text := fmt.Sprintf("Pending invoices: %d. Total outstanding: %s.", pending, formatAmount(total))

	inv, ok, err := b.latest(ctx, f)
	if err != nil {
		return Result{}, err
	}
	if ok {
		text += fmt.Sprintf(" Latest invoice is '%s' on %s for %s %s.",
			inv.Status, formatDay(inv.InvoiceDate), formatAmount(inv.Amount), currencyOrUSD(inv.Currency))
	}
	return sqlResult(text)
}

func (b *Invoices) latest(ctx context.Context, f store.Filter) (store.Invoice, bool, error) {
	f.Sort, f.Limit = store.SortDesc, 1
	rows, err := b.db.ListInvoices(ctx, f)
	if err != nil {
		return store.Invoice{}, false, fmt.Errorf("finding latest invoice: %w", err)
	}
	inv, ok := first(rows)
	return inv, ok, nil
}
