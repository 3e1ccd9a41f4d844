// ABOUTME: In-memory Store used by tests and the zero-setup demo
// ABOUTME: Mirrors the SQL backends' filter, ordering, and tie-break semantics exactly

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is a goroutine-safe in-memory Store.
type Memory struct {
	mu          sync.RWMutex
	now         func() time.Time
	clients     []Client
	users       []User
	userClients []UserClient
	equipment   map[int64]Equipment
	orders      []Order
	invoices    []Invoice
	warranties  []Warranty
	amcs        []AMCContract
	maintenance []Maintenance
	tickets     []Ticket
	chatLogs    []ChatLog
	nextTicket  int64
	nextLog     int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		now:       time.Now,
		equipment: make(map[int64]Equipment),
	}
}

// SetClock overrides the clock used for CreatedAt/Timestamp defaults.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Load appends the dataset. IDs in the dataset are kept as given.
func (m *Memory) Load(_ context.Context, d *Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients = append(m.clients, d.Clients...)
	m.users = append(m.users, d.Users...)
	m.userClients = append(m.userClients, d.UserClients...)
	for _, e := range d.Equipment {
		m.equipment[e.ID] = e
	}
	m.orders = append(m.orders, d.Orders...)
	m.invoices = append(m.invoices, d.Invoices...)
	m.warranties = append(m.warranties, d.Warranties...)
	m.amcs = append(m.amcs, d.AMCContracts...)
	m.maintenance = append(m.maintenance, d.Maintenance...)
	for _, t := range d.Tickets {
		m.tickets = append(m.tickets, t)
		if t.ID > m.nextTicket {
			m.nextTicket = t.ID
		}
	}
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// match applies scope, status and period; date is the entity's date column.
func (f Filter) match(clientID int64, status string, date time.Time) bool {
	if clientID != f.ClientID {
		return false
	}
	if len(f.Statuses) > 0 && !containsString(f.Statuses, status) {
		return false
	}
	if f.Period != nil && (date.Before(f.Period.Start) || !date.Before(f.Period.End)) {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// sortAndLimit orders rows by (date, id) in the filter's direction and applies the limit.
func sortAndLimit[T any](rows []T, f Filter, key func(T) (time.Time, int64)) []T {
	if f.Sort != SortNone {
		sort.SliceStable(rows, func(i, j int) bool {
			di, ii := key(rows[i])
			dj, ij := key(rows[j])
			if !di.Equal(dj) {
				if f.Sort == SortAsc {
					return di.Before(dj)
				}
				return di.After(dj)
			}
			if f.Sort == SortAsc {
				return ii < ij
			}
			return ii > ij
		})
	}
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows
}

func (m *Memory) selectOrders(f Filter) []Order {
	var out []Order
	for _, o := range m.orders {
		if f.match(o.ClientID, o.Status, o.OrderDate) {
			out = append(out, o)
		}
	}
	return out
}

// CountOrders counts orders matching f.
func (m *Memory) CountOrders(_ context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.selectOrders(f)), nil
}

// ListOrders lists orders matching f ordered by order date.
func (m *Memory) ListOrders(_ context.Context, f Filter) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortAndLimit(m.selectOrders(f), f, func(o Order) (time.Time, int64) { return o.OrderDate, o.ID }), nil
}

// FindOrderByTracking returns the most recent order with the given tracking number.
func (m *Memory) FindOrderByTracking(_ context.Context, clientID int64, code string) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Order
	for _, o := range m.orders {
		if o.ClientID == clientID && o.TrackingNumber != "" && strings.EqualFold(o.TrackingNumber, code) {
			matches = append(matches, o)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	matches = sortAndLimit(matches, Filter{Sort: SortDesc, Limit: 1}, func(o Order) (time.Time, int64) { return o.OrderDate, o.ID })
	o := matches[0]
	return &o, nil
}

func (m *Memory) selectInvoices(f Filter) []Invoice {
	var out []Invoice
	for _, inv := range m.invoices {
		if f.match(inv.ClientID, inv.Status, inv.InvoiceDate) {
			out = append(out, inv)
		}
	}
	return out
}

// CountInvoices counts invoices matching f.
func (m *Memory) CountInvoices(_ context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.selectInvoices(f)), nil
}

// ListInvoices lists invoices matching f ordered by invoice date.
func (m *Memory) ListInvoices(_ context.Context, f Filter) ([]Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortAndLimit(m.selectInvoices(f), f, func(i Invoice) (time.Time, int64) { return i.InvoiceDate, i.ID }), nil
}

// SumInvoices totals the amount of invoices matching f.
func (m *Memory) SumInvoices(_ context.Context, f Filter) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, inv := range m.selectInvoices(f) {
		total += inv.Amount
	}
	return total, nil
}

// equipmentClient resolves the owning client of a piece of equipment; 0 when unknown.
func (m *Memory) equipmentClient(id int64) int64 {
	return m.equipment[id].ClientID
}

func (m *Memory) selectWarranties(f Filter) []Warranty {
	var out []Warranty
	for _, w := range m.warranties {
		if f.match(m.equipmentClient(w.EquipmentID), w.Status, w.EndDate) {
			out = append(out, w)
		}
	}
	return out
}

// CountWarranties counts warranties on the client's equipment.
func (m *Memory) CountWarranties(_ context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.selectWarranties(f)), nil
}

// ListWarranties lists warranties ordered by end date.
func (m *Memory) ListWarranties(_ context.Context, f Filter) ([]Warranty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortAndLimit(m.selectWarranties(f), f, func(w Warranty) (time.Time, int64) { return w.EndDate, w.ID }), nil
}

// CountAMCContracts counts AMC contracts on the client's equipment.
func (m *Memory) CountAMCContracts(_ context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.amcs {
		if f.match(m.equipmentClient(a.EquipmentID), a.Status, a.EndDate) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) selectMaintenance(f Filter) []Maintenance {
	var out []Maintenance
	for _, s := range m.maintenance {
		if f.match(m.equipmentClient(s.EquipmentID), s.Status, s.ScheduledDate) {
			out = append(out, s)
		}
	}
	return out
}

// CountMaintenance counts scheduled maintenance on the client's equipment.
func (m *Memory) CountMaintenance(_ context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.selectMaintenance(f)), nil
}

// ListMaintenance lists maintenance entries ordered by scheduled date.
func (m *Memory) ListMaintenance(_ context.Context, f Filter) ([]Maintenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortAndLimit(m.selectMaintenance(f), f, func(s Maintenance) (time.Time, int64) { return s.ScheduledDate, s.ID }), nil
}

func (m *Memory) selectTickets(f Filter) []Ticket {
	var out []Ticket
	for _, t := range m.tickets {
		if f.match(t.ClientID, t.Status, t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out
}

// CountTickets counts tickets matching f.
func (m *Memory) CountTickets(_ context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.selectTickets(f)), nil
}

// ListTickets lists tickets ordered by creation time.
func (m *Memory) ListTickets(_ context.Context, f Filter) ([]Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortAndLimit(m.selectTickets(f), f, func(t Ticket) (time.Time, int64) { return t.CreatedAt, t.ID }), nil
}

// CreateTicket appends t with the next id.
func (m *Memory) CreateTicket(_ context.Context, t *Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTicket++
	t.ID = m.nextTicket
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now().UTC()
	}
	m.tickets = append(m.tickets, *t)
	return nil
}

// PrimaryClient returns the user's primary client.
func (m *Memory) PrimaryClient(_ context.Context, userID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, uc := range m.userClients {
		if uc.UserID == userID && uc.IsPrimary {
			return uc.ClientID, nil
		}
	}
	return 0, ErrNoPrimaryClient
}

// AppendChatLog stores l with the next id.
func (m *Memory) AppendChatLog(_ context.Context, l *ChatLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLog++
	l.ID = m.nextLog
	if l.Timestamp.IsZero() {
		l.Timestamp = m.now().UTC()
	}
	m.chatLogs = append(m.chatLogs, *l)
	return nil
}

// ChatHistory returns the user's newest entries first.
func (m *Memory) ChatHistory(_ context.Context, userID, clientID int64, limit int) ([]ChatLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ChatLog
	for _, l := range m.chatLogs {
		if l.UserID == userID && l.ClientID == clientID {
			out = append(out, l)
		}
	}
	return sortAndLimit(out, Filter{Sort: SortDesc, Limit: limit}, func(l ChatLog) (time.Time, int64) { return l.Timestamp, l.ID }), nil
}
