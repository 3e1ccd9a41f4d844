// ABOUTME: Dialect-aware SQL text builder shared by the SQLite and Postgres backends
// ABOUTME: Turns a Filter into WHERE/ORDER BY/LIMIT with positional placeholders

package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dialect differs only in placeholder syntax.
type dialect struct {
	name        string
	placeholder func(n int) string
}

var (
	sqliteDialect   = dialect{name: "sqlite", placeholder: func(int) string { return "?" }}
	postgresDialect = dialect{name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
)

// table describes how one entity is selected and scoped.
type table struct {
	from   string // FROM clause, including the equipment join when scoped through equipment
	cols   string // selected columns, in scan order
	id     string
	client string
	status string
	date   string
}

var (
	ordersTable = table{
		from:   "orders o",
		cols:   "o.id, o.client_id, o.status, COALESCE(o.tracking_number, ''), o.order_date, o.expected_delivery_date",
		id:     "o.id",
		client: "o.client_id",
		status: "o.status",
		date:   "o.order_date",
	}
	invoicesTable = table{
		from:   "invoices i",
		cols:   "i.id, i.client_id, i.amount, COALESCE(i.currency, ''), i.status, i.invoice_date, i.due_date",
		id:     "i.id",
		client: "i.client_id",
		status: "i.status",
		date:   "i.invoice_date",
	}
	warrantiesTable = table{
		from:   "warranties w JOIN equipment e ON e.id = w.equipment_id",
		cols:   "w.id, w.equipment_id, w.start_date, w.end_date, COALESCE(w.coverage_details, ''), w.status",
		id:     "w.id",
		client: "e.client_id",
		status: "w.status",
		date:   "w.end_date",
	}
	amcTable = table{
		from:   "amc_contracts a JOIN equipment e ON e.id = a.equipment_id",
		cols:   "a.id",
		id:     "a.id",
		client: "e.client_id",
		status: "a.status",
		date:   "a.end_date",
	}
	maintenanceTable = table{
		from:   "scheduled_maintenance m JOIN equipment e ON e.id = m.equipment_id",
		cols:   "m.id, m.equipment_id, m.scheduled_date, m.status, COALESCE(m.notes, '')",
		id:     "m.id",
		client: "e.client_id",
		status: "m.status",
		date:   "m.scheduled_date",
	}
	ticketsTable = table{
		from:   "tickets t",
		cols:   "t.id, t.client_id, t.user_id, t.subject, t.description, t.status, t.priority, t.created_at",
		id:     "t.id",
		client: "t.client_id",
		status: "t.status",
		date:   "t.created_at",
	}
)

// stmt accumulates WHERE conditions and their bound arguments.
type stmt struct {
	d     dialect
	where []string
	args  []any
}

// bind appends v and returns its placeholder. Times are bound in UTC so SQLite's
// text timestamps compare in chronological order.
func (s *stmt) bind(v any) string {
	if t, ok := v.(time.Time); ok {
		v = t.UTC()
	}
	s.args = append(s.args, v)
	return s.d.placeholder(len(s.args))
}

func (s *stmt) whereClause() string {
	if len(s.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(s.where, " AND ")
}

func (d dialect) filtered(t table, f Filter) *stmt {
	s := &stmt{d: d}
	s.where = append(s.where, t.client+" = "+s.bind(f.ClientID))
	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			ph[i] = s.bind(st)
		}
		s.where = append(s.where, fmt.Sprintf("%s IN (%s)", t.status, strings.Join(ph, ", ")))
	}
	if f.Period != nil {
		s.where = append(s.where,
			t.date+" >= "+s.bind(f.Period.Start),
			t.date+" < "+s.bind(f.Period.End),
		)
	}
	return s
}

func (d dialect) countSQL(t table, f Filter) (string, []any) {
	s := d.filtered(t, f)
	return "SELECT COUNT(*) FROM " + t.from + s.whereClause(), s.args
}

func (d dialect) sumSQL(t table, expr string, f Filter) (string, []any) {
	s := d.filtered(t, f)
	return "SELECT COALESCE(SUM(" + expr + "), 0) FROM " + t.from + s.whereClause(), s.args
}

func (d dialect) listSQL(t table, f Filter) (string, []any) {
	s := d.filtered(t, f)
	return "SELECT " + t.cols + " FROM " + t.from + s.whereClause() + orderLimit(s, t, f), s.args
}

// orderLimit renders ORDER BY (date, id) in the filter's direction plus LIMIT.
func orderLimit(s *stmt, t table, f Filter) string {
	var b strings.Builder
	switch f.Sort {
	case SortAsc:
		fmt.Fprintf(&b, " ORDER BY %s ASC, %s ASC", t.date, t.id)
	case SortDesc:
		fmt.Fprintf(&b, " ORDER BY %s DESC, %s DESC", t.date, t.id)
	}
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + s.bind(f.Limit))
	}
	return b.String()
}

func (d dialect) trackingSQL(clientID int64, code string) (string, []any) {
	s := &stmt{d: d}
	s.where = append(s.where,
		ordersTable.client+" = "+s.bind(clientID),
		"UPPER(o.tracking_number) = UPPER("+s.bind(code)+")",
	)
	return "SELECT " + ordersTable.cols + " FROM " + ordersTable.from + s.whereClause() +
		orderLimit(s, ordersTable, Filter{Sort: SortDesc, Limit: 1}), s.args
}

func (d dialect) primaryClientSQL(userID int64) (string, []any) {
	s := &stmt{d: d}
	s.where = append(s.where, "user_id = "+s.bind(userID), "is_primary = "+s.bind(true))
	return "SELECT client_id FROM user_clients" + s.whereClause() + " ORDER BY id ASC LIMIT 1", s.args
}

const chatLogCols = "id, user_id, client_id, timestamp, user_message, COALESCE(ai_response, ''), " +
	"COALESCE(intent, ''), COALESCE(data_source, ''), COALESCE(request_id, '')"

func (d dialect) historySQL(userID, clientID int64, limit int) (string, []any) {
	s := &stmt{d: d}
	s.where = append(s.where, "user_id = "+s.bind(userID), "client_id = "+s.bind(clientID))
	q := "SELECT " + chatLogCols + " FROM chat_logs" + s.whereClause() + " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		q += " LIMIT " + s.bind(limit)
	}
	return q, s.args
}

// insertSQL renders INSERT INTO name (cols) VALUES (placeholders).
func (d dialect) insertSQL(name string, cols ...string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(cols, ", "), strings.Join(ph, ", "))
}

var (
	ticketInsertCols  = []string{"client_id", "user_id", "subject", "description", "status", "priority", "created_at"}
	chatLogInsertCols = []string{"user_id", "client_id", "timestamp", "user_message", "ai_response", "intent", "data_source", "request_id"}
)
