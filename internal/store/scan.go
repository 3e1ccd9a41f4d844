// ABOUTME: Row scanning and dataset loading shared by database/sql and pgx backends
// ABOUTME: Both driver row types satisfy rowIter, so scanners are written once

package store

import (
	"context"
	"fmt"
	"time"
)

type scanner interface {
	Scan(dest ...any) error
}

// rowIter is implemented by *sql.Rows and pgx.Rows.
type rowIter interface {
	scanner
	Next() bool
	Err() error
}

func collect[T any](rows rowIter, scan func(scanner) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func scanOrder(r scanner) (Order, error) {
	var o Order
	var eta *time.Time
	if err := r.Scan(&o.ID, &o.ClientID, &o.Status, &o.TrackingNumber, &o.OrderDate, &eta); err != nil {
		return Order{}, err
	}
	o.OrderDate = o.OrderDate.UTC()
	o.ExpectedDelivery = utcPtr(eta)
	return o, nil
}

func scanInvoice(r scanner) (Invoice, error) {
	var i Invoice
	var due *time.Time
	if err := r.Scan(&i.ID, &i.ClientID, &i.Amount, &i.Currency, &i.Status, &i.InvoiceDate, &due); err != nil {
		return Invoice{}, err
	}
	i.InvoiceDate = i.InvoiceDate.UTC()
	i.DueDate = utcPtr(due)
	return i, nil
}

func scanWarranty(r scanner) (Warranty, error) {
	var w Warranty
	if err := r.Scan(&w.ID, &w.EquipmentID, &w.StartDate, &w.EndDate, &w.Coverage, &w.Status); err != nil {
		return Warranty{}, err
	}
	w.StartDate, w.EndDate = w.StartDate.UTC(), w.EndDate.UTC()
	return w, nil
}

func scanMaintenance(r scanner) (Maintenance, error) {
	var m Maintenance
	if err := r.Scan(&m.ID, &m.EquipmentID, &m.ScheduledDate, &m.Status, &m.Notes); err != nil {
		return Maintenance{}, err
	}
	m.ScheduledDate = m.ScheduledDate.UTC()
	return m, nil
}

func scanTicket(r scanner) (Ticket, error) {
	var t Ticket
	if err := r.Scan(&t.ID, &t.ClientID, &t.UserID, &t.Subject, &t.Description, &t.Status, &t.Priority, &t.CreatedAt); err != nil {
		return Ticket{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func scanChatLog(r scanner) (ChatLog, error) {
	var l ChatLog
	if err := r.Scan(&l.ID, &l.UserID, &l.ClientID, &l.Timestamp, &l.UserMessage, &l.AIResponse, &l.Intent, &l.DataSource, &l.RequestID); err != nil {
		return ChatLog{}, err
	}
	l.Timestamp = l.Timestamp.UTC()
	return l, nil
}

// execFunc runs one statement inside the loader's transaction.
type execFunc func(ctx context.Context, query string, args ...any) error

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// loadDataset inserts every row of ds with its explicit id, parents first.
func loadDataset(ctx context.Context, d dialect, exec execFunc, ds *Dataset) error {
	type insert struct {
		table string
		cols  []string
		rows  [][]any
	}

	var batches []insert
	add := func(table string, cols []string, rows [][]any) {
		if len(rows) > 0 {
			batches = append(batches, insert{table, cols, rows})
		}
	}

	var rows [][]any
	for _, c := range ds.Clients {
		rows = append(rows, []any{c.ID, c.Name, c.ClientCode, nullString(c.Address)})
	}
	add("clients", []string{"id", "name", "client_code", "address"}, rows)

	rows = nil
	for _, u := range ds.Users {
		rows = append(rows, []any{u.ID, u.Email, nullString(u.Name)})
	}
	add("users", []string{"id", "email", "name"}, rows)

	rows = nil
	for _, uc := range ds.UserClients {
		rows = append(rows, []any{uc.UserID, uc.ClientID, uc.IsPrimary})
	}
	add("user_clients", []string{"user_id", "client_id", "is_primary"}, rows)

	rows = nil
	for _, e := range ds.Equipment {
		rows = append(rows, []any{e.ID, e.ClientID, e.ModelName, e.SerialNumber, nullString(e.Category), e.Status})
	}
	add("equipment", []string{"id", "client_id", "model_name", "serial_number", "category", "status"}, rows)

	rows = nil
	for _, o := range ds.Orders {
		rows = append(rows, []any{o.ID, o.ClientID, o.Status, nullString(o.TrackingNumber), o.OrderDate.UTC(), utcOrNil(o.ExpectedDelivery)})
	}
	add("orders", []string{"id", "client_id", "status", "tracking_number", "order_date", "expected_delivery_date"}, rows)

	rows = nil
	for _, i := range ds.Invoices {
		rows = append(rows, []any{i.ID, i.ClientID, i.Amount, nullString(i.Currency), i.Status, i.InvoiceDate.UTC(), utcOrNil(i.DueDate)})
	}
	add("invoices", []string{"id", "client_id", "amount", "currency", "status", "invoice_date", "due_date"}, rows)

	rows = nil
	for _, w := range ds.Warranties {
		rows = append(rows, []any{w.ID, w.EquipmentID, w.StartDate.UTC(), w.EndDate.UTC(), nullString(w.Coverage), w.Status})
	}
	add("warranties", []string{"id", "equipment_id", "start_date", "end_date", "coverage_details", "status"}, rows)

	rows = nil
	for _, a := range ds.AMCContracts {
		rows = append(rows, []any{a.ID, a.EquipmentID, a.StartDate.UTC(), a.EndDate.UTC(), nullString(a.SLA), a.Status, a.Cost})
	}
	add("amc_contracts", []string{"id", "equipment_id", "start_date", "end_date", "sla_details", "status", "cost"}, rows)

	rows = nil
	for _, m := range ds.Maintenance {
		rows = append(rows, []any{m.ID, m.EquipmentID, m.ScheduledDate.UTC(), m.Status, nullString(m.Notes)})
	}
	add("scheduled_maintenance", []string{"id", "equipment_id", "scheduled_date", "status", "notes"}, rows)

	rows = nil
	for _, t := range ds.Tickets {
		rows = append(rows, []any{t.ID, t.ClientID, t.UserID, t.Subject, t.Description, t.Status, t.Priority, t.CreatedAt.UTC()})
	}
	add("tickets", []string{"id", "client_id", "user_id", "subject", "description", "status", "priority", "created_at"}, rows)

	for _, b := range batches {
		q := d.insertSQL(b.table, b.cols...)
		for _, r := range b.rows {
			if err := exec(ctx, q, r...); err != nil {
				return fmt.Errorf("inserting into %s: %w", b.table, err)
			}
		}
	}
	return nil
}

// seededTables lists tables whose id sequences must advance past explicit ids.
var seededTables = []string{
	"clients", "users", "user_clients", "equipment", "orders", "invoices",
	"warranties", "amc_contracts", "scheduled_maintenance", "tickets",
}
