// ABOUTME: Postgres-backed Store using a pgx connection pool
// ABOUTME: Same SQL as the SQLite backend with $n placeholders; schema applied on connect

package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema_postgres.sql
var postgresSchema string

// Postgres implements Store on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
	d    dialect
	now  func() time.Time
}

// OpenPostgres connects to connString and applies the schema.
func OpenPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return NewPostgres(pool), nil
}

// NewPostgres wraps an existing pool. The schema is assumed to exist.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, d: postgresDialect, now: time.Now}
}

// Ping checks the pool.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// Load inserts the dataset in one transaction and advances id sequences past it.
func (p *Postgres) Load(ctx context.Context, ds *Dataset) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	exec := func(ctx context.Context, q string, args ...any) error {
		_, err := tx.Exec(ctx, q, args...)
		return err
	}
	if err := loadDataset(ctx, p.d, exec, ds); err != nil {
		return err
	}
	for _, t := range seededTables {
		q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", t, t)
		if _, err := tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("advancing %s sequence: %w", t, err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) count(ctx context.Context, q string, args []any) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres count: %w", err)
	}
	return n, nil
}

func pgList[T any](ctx context.Context, p *Postgres, q string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	defer rows.Close()
	return collect(rows, scan)
}

// CountOrders counts orders matching f.
func (p *Postgres) CountOrders(ctx context.Context, f Filter) (int, error) {
	q, args := p.d.countSQL(ordersTable, f)
	return p.count(ctx, q, args)
}

// ListOrders lists orders matching f.
func (p *Postgres) ListOrders(ctx context.Context, f Filter) ([]Order, error) {
	q, args := p.d.listSQL(ordersTable, f)
	return pgList(ctx, p, q, args, scanOrder)
}

// FindOrderByTracking returns the most recent order with the tracking number.
func (p *Postgres) FindOrderByTracking(ctx context.Context, clientID int64, code string) (*Order, error) {
	q, args := p.d.trackingSQL(clientID, code)
	o, err := scanOrder(p.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres tracking lookup: %w", err)
	}
	return &o, nil
}

// CountInvoices counts invoices matching f.
func (p *Postgres) CountInvoices(ctx context.Context, f Filter) (int, error) {
	q, args := p.d.countSQL(invoicesTable, f)
	return p.count(ctx, q, args)
}

// ListInvoices lists invoices matching f.
func (p *Postgres) ListInvoices(ctx context.Context, f Filter) ([]Invoice, error) {
	q, args := p.d.listSQL(invoicesTable, f)
	return pgList(ctx, p, q, args, scanInvoice)
}

// SumInvoices totals invoice amounts matching f.
func (p *Postgres) SumInvoices(ctx context.Context, f Filter) (float64, error) {
	q, args := p.d.sumSQL(invoicesTable, "i.amount", f)
	var total float64
	if err := p.pool.QueryRow(ctx, q, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres sum: %w", err)
	}
	return total, nil
}

// CountWarranties counts warranties matching f.
func (p *Postgres) CountWarranties(ctx context.Context, f Filter) (int, error) {
	q, args := p.d.countSQL(warrantiesTable, f)
	return p.count(ctx, q, args)
}

// ListWarranties lists warranties matching f.
func (p *Postgres) ListWarranties(ctx context.Context, f Filter) ([]Warranty, error) {
	q, args := p.d.listSQL(warrantiesTable, f)
	return pgList(ctx, p, q, args, scanWarranty)
}

// CountAMCContracts counts AMC contracts matching f.
func (p *Postgres) CountAMCContracts(ctx context.Context, f Filter) (int, error) {
	q, args := p.d.countSQL(amcTable, f)
	return p.count(ctx, q, args)
}

// CountMaintenance counts scheduled maintenance matching f.
func (p *Postgres) CountMaintenance(ctx context.Context, f Filter) (int, error) {
	q, args := p.d.countSQL(maintenanceTable, f)
	return p.count(ctx, q, args)
}

// ListMaintenance lists scheduled maintenance matching f.
func (p *Postgres) ListMaintenance(ctx context.Context, f Filter) ([]Maintenance, error) {
	q, args := p.d.listSQL(maintenanceTable, f)
	return pgList(ctx, p, q, args, scanMaintenance)
}

// CountTickets counts tickets matching f.
func (p *Postgres) CountTickets(ctx context.Context, f Filter) (int, error) {
	q, args := p.d.countSQL(ticketsTable, f)
	return p.count(ctx, q, args)
}

// ListTickets lists tickets matching f.
func (p *Postgres) ListTickets(ctx context.Context, f Filter) ([]Ticket, error) {
	q, args := p.d.listSQL(ticketsTable, f)
	return pgList(ctx, p, q, args, scanTicket)
}

// CreateTicket inserts t and sets its ID and CreatedAt.
func (p *Postgres) CreateTicket(ctx context.Context, t *Ticket) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = p.now().UTC()
	}
	q := p.d.insertSQL("tickets", ticketInsertCols...) + " RETURNING id"
	err := p.pool.QueryRow(ctx, q,
		t.ClientID, t.UserID, t.Subject, t.Description, t.Status, t.Priority, t.CreatedAt.UTC()).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("postgres insert ticket: %w", err)
	}
	return nil
}

// PrimaryClient returns the user's primary client.
func (p *Postgres) PrimaryClient(ctx context.Context, userID int64) (int64, error) {
	q, args := p.d.primaryClientSQL(userID)
	var id int64
	err := p.pool.QueryRow(ctx, q, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoPrimaryClient
	}
	if err != nil {
		return 0, fmt.Errorf("postgres primary client: %w", err)
	}
	return id, nil
}

// AppendChatLog stores l and sets its ID.
func (p *Postgres) AppendChatLog(ctx context.Context, l *ChatLog) error {
	if l.Timestamp.IsZero() {
		l.Timestamp = p.now().UTC()
	}
	q := p.d.insertSQL("chat_logs", chatLogInsertCols...) + " RETURNING id"
	err := p.pool.QueryRow(ctx, q,
		l.UserID, l.ClientID, l.Timestamp.UTC(), l.UserMessage, l.AIResponse, l.Intent, l.DataSource, nullString(l.RequestID)).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("postgres insert chat log: %w", err)
	}
	return nil
}

// ChatHistory returns the user's newest entries first.
func (p *Postgres) ChatHistory(ctx context.Context, userID, clientID int64, limit int) ([]ChatLog, error) {
	q, args := p.d.historySQL(userID, clientID, limit)
	return pgList(ctx, p, q, args, scanChatLog)
}
