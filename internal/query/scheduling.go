// ABOUTME: Scheduled maintenance questions: count, upcoming list, most recent entry
// ABOUTME: Counting needs the word "maintenance" so a bare "how many" does not match

package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauromedda/medsupport-go/internal/phrase"
	"github.com/mauromedda/medsupport-go/internal/store"
)

var maintenanceListWords = []string{"list", "show", "upcoming"}

// MaintenanceStore is the data access the scheduling builder needs.
type MaintenanceStore interface {
	CountMaintenance(ctx context.Context, f store.Filter) (int, error)
	ListMaintenance(ctx context.Context, f store.Filter) ([]store.Maintenance, error)
}

// Scheduling answers installation and maintenance schedule questions.
type Scheduling struct {
	db   MaintenanceStore
	opts options
}

// NewScheduling creates the scheduling builder.
func NewScheduling(db MaintenanceStore, opts ...Option) *Scheduling {
	return &Scheduling{db: db, opts: newOptions(opts)}
}

// Build answers one scheduling question.
func (b *Scheduling) Build(ctx context.Context, req Request) (Result, error) {
	text := phrase.Normalize(req.Message)
	limit := phrase.ParseLimit(req.Message, phrase.DefaultLimit, phrase.MaxLimit)

	wantsCount := phrase.WantsCount(text) && strings.Contains(text, "maintenance")
	wantsList := phrase.ContainsAny(text, maintenanceListWords) && !wantsCount
	wantsLatest := phrase.ContainsAny(text, phrase.LatestWords) && !(wantsCount || wantsList)

	scope := store.Filter{ClientID: req.ClientID}
	switch {
	case wantsList:
		f := scope
		f.Sort, f.Limit = store.SortAsc, limit
		rows, err := b.db.ListMaintenance(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("listing maintenance: %w", err)
		}
		if len(rows) == 0 {
			return sqlResult("No scheduled maintenance found.")
		}
		lines := make([]string, len(rows))
		for i, m := range rows {
			lines[i] = fmt.Sprintf("- Equipment %d | %s | %s", m.EquipmentID, m.Status, formatDay(m.ScheduledDate))
		}
		return sqlResult("Upcoming maintenance:\n" + strings.Join(lines, "\n"))

	case wantsLatest:
		f := scope
		f.Sort, f.Limit = store.SortDesc, 1
		rows, err := b.db.ListMaintenance(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("finding latest maintenance: %w", err)
		}
		m, ok := first(rows)
		if !ok {
			return sqlResult("No scheduled maintenance found.")
		}
		return sqlResult(fmt.Sprintf("Most recent maintenance entry: equipment %d, status %s, on %s.",
			m.EquipmentID, m.Status, formatDay(m.ScheduledDate)))
	}

	n, err := b.db.CountMaintenance(ctx, scope)
	if err != nil {
		return Result{}, fmt.Errorf("counting maintenance: %w", err)
	}
	return sqlResult(fmt.Sprintf("You have %d scheduled maintenance entries.", n))
}
