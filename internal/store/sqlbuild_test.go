// ABOUTME: Tests for the SQL text builder: placeholders, filter clauses, ordering, limits
// ABOUTME: Compares generated statements for both dialects

package store

import (
	"strings"
	"testing"
	"time"
)

func TestDialect_CountSQLPlaceholders(t *testing.T) {
	t.Parallel()

	f := Filter{ClientID: 1, Statuses: []string{"pending", "overdue"}}
	tests := []struct {
		d    dialect
		want string
	}{
		{sqliteDialect, "SELECT COUNT(*) FROM invoices i WHERE i.client_id = ? AND i.status IN (?, ?)"},
		{postgresDialect, "SELECT COUNT(*) FROM invoices i WHERE i.client_id = $1 AND i.status IN ($2, $3)"},
	}
	for _, tt := range tests {
		t.Run(tt.d.name, func(t *testing.T) {
			t.Parallel()
			q, args := tt.d.countSQL(invoicesTable, f)
			if q != tt.want {
				t.Errorf("countSQL = %q; want %q", q, tt.want)
			}
			if len(args) != 3 {
				t.Errorf("len(args) = %d; want 3", len(args))
			}
		})
	}
}

func TestDialect_ListSQLOrderAndLimit(t *testing.T) {
	t.Parallel()

	q, args := postgresDialect.listSQL(maintenanceTable, Filter{ClientID: 7, Sort: SortDesc, Limit: 5})
	if !strings.Contains(q, "JOIN equipment e ON e.id = m.equipment_id") {
		t.Errorf("query %q missing equipment join", q)
	}
	if !strings.HasSuffix(q, " ORDER BY m.scheduled_date DESC, m.id DESC LIMIT $2") {
		t.Errorf("query %q has wrong order/limit suffix", q)
	}
	if len(args) != 2 || args[1] != 5 {
		t.Errorf("args = %v; want [7 5]", args)
	}
}

func TestDialect_PeriodBindsUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", 3*3600)
	start := time.Date(2024, 1, 1, 3, 0, 0, 0, loc)
	q, args := sqliteDialect.countSQL(ordersTable, Filter{ClientID: 1, Period: &Period{Start: start, End: start.Add(24 * time.Hour)}})
	if !strings.Contains(q, "o.order_date >= ? AND o.order_date < ?") {
		t.Errorf("query %q missing half-open period", q)
	}
	got, ok := args[1].(time.Time)
	if !ok || got.Location() != time.UTC || got.Hour() != 0 {
		t.Errorf("start arg = %v; want 2024-01-01 00:00 UTC", args[1])
	}
}

func TestDialect_InsertSQL(t *testing.T) {
	t.Parallel()

	got := postgresDialect.insertSQL("tickets", "a", "b")
	want := "INSERT INTO tickets (a, b) VALUES ($1, $2)"
	if got != want {
		t.Errorf("insertSQL = %q; want %q", got, want)
	}
}
