// ABOUTME: SQLite-backed Store using database/sql and mattn/go-sqlite3
// ABOUTME: Schema is embedded and applied on open; single connection serializes writes

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLite implements Store on a local database file.
type SQLite struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
// path ":memory:" opens a private in-memory database. For a file path the
// parent directory must exist.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if path != ":memory:" {
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: the in-memory database lives and dies with it, and SQLite
	// allows a single writer anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLite{db: db, d: sqliteDialect, now: time.Now}, nil
}

// Ping checks the connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Load inserts the dataset in one transaction.
func (s *SQLite) Load(ctx context.Context, ds *Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	exec := func(ctx context.Context, q string, args ...any) error {
		_, err := tx.ExecContext(ctx, q, args...)
		return err
	}
	if err := loadDataset(ctx, s.d, exec, ds); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) count(ctx context.Context, q string, args []any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite count: %w", err)
	}
	return n, nil
}

func sqliteList[T any](ctx context.Context, s *SQLite, q string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()
	return collect(rows, scan)
}

// CountOrders counts orders matching f.
func (s *SQLite) CountOrders(ctx context.Context, f Filter) (int, error) {
	q, args := s.d.countSQL(ordersTable, f)
	return s.count(ctx, q, args)
}

// ListOrders lists orders matching f.
func (s *SQLite) ListOrders(ctx context.Context, f Filter) ([]Order, error) {
	q, args := s.d.listSQL(ordersTable, f)
	return sqliteList(ctx, s, q, args, scanOrder)
}

// FindOrderByTracking returns the most recent order with the tracking number.
func (s *SQLite) FindOrderByTracking(ctx context.Context, clientID int64, code string) (*Order, error) {
	q, args := s.d.trackingSQL(clientID, code)
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite tracking lookup: %w", err)
	}
	return &o, nil
}

// CountInvoices counts invoices matching f.
func (s *SQLite) CountInvoices(ctx context.Context, f Filter) (int, error) {
	q, args := s.d.countSQL(invoicesTable, f)
	return s.count(ctx, q, args)
}

// ListInvoices lists invoices matching f.
func (s *SQLite) ListInvoices(ctx context.Context, f Filter) ([]Invoice, error) {
	q, args := s.d.listSQL(invoicesTable, f)
	return sqliteList(ctx, s, q, args, scanInvoice)
}

// SumInvoices totals invoice amounts matching f.
func (s *SQLite) SumInvoices(ctx context.Context, f Filter) (float64, error) {
	q, args := s.d.sumSQL(invoicesTable, "i.amount", f)
	var total float64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sqlite sum: %w", err)
	}
	return total, nil
}

// CountWarranties counts warranties matching f.
func (s *SQLite) CountWarranties(ctx context.Context, f Filter) (int, error) {
	q, args := s.d.countSQL(warrantiesTable, f)
	return s.count(ctx, q, args)
}

// ListWarranties lists warranties matching f.
func (s *SQLite) ListWarranties(ctx context.Context, f Filter) ([]Warranty, error) {
	q, args := s.d.listSQL(warrantiesTable, f)
	return sqliteList(ctx, s, q, args, scanWarranty)
}

// CountAMCContracts counts AMC contracts matching f.
func (s *SQLite) CountAMCContracts(ctx context.Context, f Filter) (int, error) {
	q, args := s.d.countSQL(amcTable, f)
	return s.count(ctx, q, args)
}

// CountMaintenance counts scheduled maintenance matching f.
func (s *SQLite) CountMaintenance(ctx context.Context, f Filter) (int, error) {
	q, args := s.d.countSQL(maintenanceTable, f)
	return s.count(ctx, q, args)
}

// ListMaintenance lists scheduled maintenance matching f.
func (s *SQLite) ListMaintenance(ctx context.Context, f Filter) ([]Maintenance, error) {
	q, args := s.d.listSQL(maintenanceTable, f)
	return sqliteList(ctx, s, q, args, scanMaintenance)
}

// CountTickets counts tickets matching f.
func (s *SQLite) CountTickets(ctx context.Context, f Filter) (int, error) {
	q, args := s.d.countSQL(ticketsTable, f)
	return s.count(ctx, q, args)
}

// ListTickets lists tickets matching f.
func (s *SQLite) ListTickets(ctx context.Context, f Filter) ([]Ticket, error) {
	q, args := s.d.listSQL(ticketsTable, f)
	return sqliteList(ctx, s, q, args, scanTicket)
}

// CreateTicket inserts t and sets its ID and CreatedAt.
func (s *SQLite) CreateTicket(ctx context.Context, t *Ticket) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	res, err := s.db.ExecContext(ctx, s.d.insertSQL("tickets", ticketInsertCols...),
		t.ClientID, t.UserID, t.Subject, t.Description, t.Status, t.Priority, t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("sqlite insert ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite ticket id: %w", err)
	}
	t.ID = id
	return nil
}

// PrimaryClient returns the user's primary client.
func (s *SQLite) PrimaryClient(ctx context.Context, userID int64) (int64, error) {
	q, args := s.d.primaryClientSQL(userID)
	var id int64
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoPrimaryClient
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite primary client: %w", err)
	}
	return id, nil
}

// AppendChatLog stores l and sets its ID.
func (s *SQLite) AppendChatLog(ctx context.Context, l *ChatLog) error {
	if l.Timestamp.IsZero() {
		l.Timestamp = s.now().UTC()
	}
	res, err := s.db.ExecContext(ctx, s.d.insertSQL("chat_logs", chatLogInsertCols...),
		l.UserID, l.ClientID, l.Timestamp.UTC(), l.UserMessage, l.AIResponse, l.Intent, l.DataSource, nullString(l.RequestID))
	if err != nil {
		return fmt.Errorf("sqlite insert chat log: %w", err)
	}
	if l.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("sqlite chat log id: %w", err)
	}
	return nil
}

// ChatHistory returns the user's newest entries first.
func (s *SQLite) ChatHistory(ctx context.Context, userID, clientID int64, limit int) ([]ChatLog, error) {
	q, args := s.d.historySQL(userID, clientID, limit)
	return sqliteList(ctx, s, q, args, scanChatLog)
}
