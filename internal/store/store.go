// ABOUTME: Data-access contracts for the support domains, chat logs, and client directory
// ABOUTME: Filter carries scope, status equality, date range, ordering and limit

package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrNoPrimaryClient is returned when a user has no primary client scope.
	ErrNoPrimaryClient = errors.New("store: user has no primary client")
)

// Sort orders list results by the entity's date column.
type Sort int

const (
	SortNone Sort = iota
	SortAsc
	SortDesc
)

// Period is a half-open interval [Start, End) on the entity's date column.
type Period struct {
	Start time.Time
	End   time.Time
}

// Filter selects rows inside one client scope.
//
// The date column depends on the entity: order_date, invoice_date, warranty end_date,
// scheduled_date, ticket created_at. Ties on the date column break on id in the same direction.
type Filter struct {
	ClientID int64
	Statuses []string // empty means any status
	Period   *Period  // nil means unbounded
	Sort     Sort
	Limit    int // 0 means no limit
}

// Domain is the read surface the query builders use, plus the single ticket insert.
type Domain interface {
	CountOrders(ctx context.Context, f Filter) (int, error)
	ListOrders(ctx context.Context, f Filter) ([]Order, error)
	// FindOrderByTracking returns the most recent order in scope whose tracking
	// number equals code, compared case-insensitively.
	FindOrderByTracking(ctx context.Context, clientID int64, code string) (*Order, error)

	CountInvoices(ctx context.Context, f Filter) (int, error)
	ListInvoices(ctx context.Context, f Filter) ([]Invoice, error)
	// SumInvoices totals amount over the filtered rows; no rows sums to zero.
	SumInvoices(ctx context.Context, f Filter) (float64, error)

	CountWarranties(ctx context.Context, f Filter) (int, error)
	ListWarranties(ctx context.Context, f Filter) ([]Warranty, error)
	CountAMCContracts(ctx context.Context, f Filter) (int, error)

	CountMaintenance(ctx context.Context, f Filter) (int, error)
	ListMaintenance(ctx context.Context, f Filter) ([]Maintenance, error)

	CountTickets(ctx context.Context, f Filter) (int, error)
	ListTickets(ctx context.Context, f Filter) ([]Ticket, error)
	// CreateTicket inserts t and sets its ID and CreatedAt.
	CreateTicket(ctx context.Context, t *Ticket) error
}

// Directory resolves a user to the client scope their questions run in.
type Directory interface {
	PrimaryClient(ctx context.Context, userID int64) (int64, error)
}

// Conversations persists the chat log.
type Conversations interface {
	AppendChatLog(ctx context.Context, l *ChatLog) error
	// ChatHistory returns up to limit entries for the user within one client, newest first.
	ChatHistory(ctx context.Context, userID, clientID int64, limit int) ([]ChatLog, error)
}

// Store is a complete backend.
type Store interface {
	Domain
	Directory
	Conversations
	// Load inserts a dataset; used for seeding.
	Load(ctx context.Context, d *Dataset) error
	Ping(ctx context.Context) error
	Close() error
}
