// ABOUTME: Dispatch table from classified intent to the domain answer builder
// ABOUTME: Intents without structured data go to the document builder; builder errors pass through

package router

import (
	"context"
	"fmt"

	"github.com/mauromedda/medsupport-go/internal/intent"
	"github.com/mauromedda/medsupport-go/internal/query"
	"github.com/mauromedda/medsupport-go/internal/store"
)

// Router maps intents to builders.
type Router struct {
	routes   map[intent.Intent]query.Builder
	fallback query.Builder
}

// New creates a Router with the standard domain builders over db. docs may be nil.
func New(db store.Domain, docs query.Retriever, opts ...query.Option) *Router {
	r := &Router{
		routes:   make(map[intent.Intent]query.Builder),
		fallback: query.NewDocuments(docs, opts...),
	}
	r.Register(intent.OrderStatus, query.NewOrders(db, opts...))
	r.Register(intent.PaymentInvoiceQueries, query.NewInvoices(db, opts...))
	r.Register(intent.WarrantyAMCQueries, query.NewWarranties(db, docs, opts...))
	r.Register(intent.SchedulingMaintenance, query.NewScheduling(db, opts...))
	r.Register(intent.ComplaintRegistration, query.NewComplaints(db, opts...))
	return r
}

// Register sets the builder for an intent, replacing any existing one.
func (r *Router) Register(in intent.Intent, b query.Builder) {
	r.routes[in] = b
}

// Builder returns the builder that answers in.
func (r *Router) Builder(in intent.Intent) query.Builder {
	if b, ok := r.routes[in]; ok {
		return b
	}
	return r.fallback
}

// Route answers req with the builder for in. Errors from the builder are returned
// wrapped with the intent; translating them for the user is the caller's job.
func (r *Router) Route(ctx context.Context, in intent.Intent, req query.Request) (query.Result, error) {
	res, err := r.Builder(in).Build(ctx, req)
	if err != nil {
		return query.Result{}, fmt.Errorf("%s: %w", in, err)
	}
	return res, nil
}
