// ABOUTME: Order questions: tracking lookup, then filtered count, latest, list or overview
// ABOUTME: A tracking code bypasses status and date filters entirely

package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mauromedda/medsupport-go/internal/phrase"
	"github.com/mauromedda/medsupport-go/internal/store"
)

var (
	orderStatuses    = []string{"pending", "confirmed", "shipped", "delivered"}
	orderLatestWords = []string{"latest", "recent", "last order"}
)

// OrderStore is the data access the order builder needs.
type OrderStore interface {
	CountOrders(ctx context.Context, f store.Filter) (int, error)
	ListOrders(ctx context.Context, f store.Filter) ([]store.Order, error)
	FindOrderByTracking(ctx context.Context, clientID int64, code string) (*store.Order, error)
}

// Orders answers order status questions.
type Orders struct {
	db   OrderStore
	opts options
}

// NewOrders creates the order builder.
func NewOrders(db OrderStore, opts ...Option) *Orders {
	return &Orders{db: db, opts: newOptions(opts)}
}

// Build answers one order question.
func (b *Orders) Build(ctx context.Context, req Request) (Result, error) {
	sig := phrase.Parse(req.Message, orderStatuses, b.opts.now())

	if sig.TrackingCode != "" {
		return b.byTracking(ctx, req.ClientID, sig.TrackingCode)
	}

	f := scopedFilter(req.ClientID, sig)
	wantsCount := phrase.WantsCount(sig.Text)
	wantsLatest := phrase.ContainsAny(sig.Text, orderLatestWords) && !wantsCount
	wantsList := phrase.WantsList(sig.Text) && !wantsCount

	switch {
	case wantsCount:
		n, err := b.db.CountOrders(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("counting orders: %w", err)
		}
		return sqlResult(fmt.Sprintf("You have %d orders%s.", n, filterDetail(sig)))

	case wantsLatest:
		o, ok, err := b.latest(ctx, f)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return sqlResult("No orders found for your criteria.")
		}
		return sqlResult(fmt.Sprintf("Latest order: status '%s', tracking %s, expected delivery %s.",
			o.Status, orNA(o.TrackingNumber), formatOptionalDay(o.ExpectedDelivery)))

	case wantsList:
		f.Sort, f.Limit = store.SortDesc, sig.Limit
		rows, err := b.db.ListOrders(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("listing orders: %w", err)
		}
		if len(rows) == 0 {
			return sqlResult("No orders found for your criteria.")
		}
		lines := make([]string, len(rows))
		for i, o := range rows {
			lines[i] = fmt.Sprintf("- %s | status %s | tracking %s | ETA %s",
				formatDay(o.OrderDate), o.Status, orNA(o.TrackingNumber), formatOptionalDay(o.ExpectedDelivery))
		}
		return sqlResult("Here are the recent orders:\n" + strings.Join(lines, "\n"))
	}

	n, err := b.db.CountOrders(ctx, f)
	if err != nil {
		return Result{}, fmt.Errorf("counting orders: %w", err)
	}
	o, ok, err := b.latest(ctx, f)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return sqlResult("No orders found for your criteria.")
	}
	return sqlResult(fmt.Sprintf("You have %d orders%s. Latest is '%s', tracking %s, ETA %s.",
		n, filterDetail(sig), o.Status, orNA(o.TrackingNumber), formatOptionalDay(o.ExpectedDelivery)))
}

func (b *Orders) byTracking(ctx context.Context, clientID int64, code string) (Result, error) {
	o, err := b.db.FindOrderByTracking(ctx, clientID, code)
	if errors.Is(err, store.ErrNotFound) {
		return sqlResult(fmt.Sprintf("No order found for tracking number %s.", code))
	}
	if err != nil {
		return Result{}, fmt.Errorf("looking up tracking number: %w", err)
	}
	return sqlResult(fmt.Sprintf("Tracking %s: status is '%s'. Expected delivery: %s.",
		o.TrackingNumber, o.Status, formatOptionalDay(o.ExpectedDelivery)))
}

func (b *Orders) latest(ctx context.Context, f store.Filter) (store.Order, bool, error) {
	f.Sort, f.Limit = store.SortDesc, 1
	rows, err := b.db.ListOrders(ctx, f)
	if err != nil {
		return store.Order{}, false, fmt.Errorf("finding latest order: %w", err)
	}
	o, ok := first(rows)
	return o, ok, nil
}
