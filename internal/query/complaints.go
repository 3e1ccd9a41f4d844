// ABOUTME: Complaint and ticket questions: open count, recent list, or registering a new ticket
// ABOUTME: The only builder that writes; short messages are refused without creating a row

package query

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mauromedda/medsupport-go/internal/phrase"
	"github.com/mauromedda/medsupport-go/internal/store"
)

const (
	minComplaintChars = 15 // code points, not grapheme clusters
	subjectChars      = 80
	listSubjectChars  = 50
)

var openTicketStatuses = []string{"open", "in_progress"}

// TicketStore is the data access the complaint builder needs.
type TicketStore interface {
	CountTickets(ctx context.Context, f store.Filter) (int, error)
	ListTickets(ctx context.Context, f store.Filter) ([]store.Ticket, error)
	CreateTicket(ctx context.Context, t *store.Ticket) error
}

// Complaints answers ticket questions and registers complaints.
type Complaints struct {
	db   TicketStore
	opts options
}

// NewComplaints creates the complaint builder.
func NewComplaints(db TicketStore, opts ...Option) *Complaints {
	return &Complaints{db: db, opts: newOptions(opts)}
}

// Build answers one complaint message, creating a ticket when asked to.
func (b *Complaints) Build(ctx context.Context, req Request) (Result, error) {
	trimmed := strings.TrimSpace(req.Message)
	text := phrase.Normalize(trimmed)
	aboutTickets := strings.Contains(text, "ticket") || strings.Contains(text, "complaint")

	wantsCreate := phrase.WantsCreate(text) || strings.Contains(text, "complaint")
	wantsCount := phrase.WantsCount(text) && aboutTickets
	wantsList := phrase.WantsList(text) && aboutTickets

	switch {
	case wantsCount:
		return b.openCount(ctx, req.ClientID)

	case wantsList:
		f := store.Filter{
			ClientID: req.ClientID,
			Sort:     store.SortDesc,
			Limit:    phrase.ParseLimit(trimmed, phrase.DefaultLimit, phrase.MaxLimit),
		}
		rows, err := b.db.ListTickets(ctx, f)
		if err != nil {
			return Result{}, fmt.Errorf("listing tickets: %w", err)
		}
		if len(rows) == 0 {
			return sqlResult("No tickets found.")
		}
		lines := make([]string, len(rows))
		for i, t := range rows {
			lines[i] = fmt.Sprintf("- #%d | %s | %s", t.ID, t.Status, preview(t.Subject, listSubjectChars))
		}
		return sqlResult("Recent tickets:\n" + strings.Join(lines, "\n"))

	case wantsCreate:
		return b.register(ctx, req, trimmed)
	}

	return b.openCount(ctx, req.ClientID)
}

func (b *Complaints) openCount(ctx context.Context, clientID int64) (Result, error) {
	n, err := b.db.CountTickets(ctx, store.Filter{ClientID: clientID, Statuses: openTicketStatuses})
	if err != nil {
		return Result{}, fmt.Errorf("counting open tickets: %w", err)
	}
	return sqlResult(fmt.Sprintf("You have %d open or in-progress tickets.", n))
}

func (b *Complaints) register(ctx context.Context, req Request, trimmed string) (Result, error) {
	if utf8.RuneCountInString(trimmed) < minComplaintChars {
		return Result{
			Text:   "To register a complaint, please provide a short subject and brief description in one message.",
			Source: SourceNone,
		}, nil
	}

	t := &store.Ticket{
		ClientID:    req.ClientID,
		UserID:      req.UserID,
		Subject:     ellipsize(trimmed, subjectChars),
		Description: trimmed,
		Status:      "open",
		Priority:    "medium",
		CreatedAt:   b.opts.now().UTC(),
	}
	if err := b.db.CreateTicket(ctx, t); err != nil {
		return Result{}, fmt.Errorf("creating ticket: %w", err)
	}
	return sqlResult(fmt.Sprintf("Complaint registered with ticket id %d.", t.ID))
}
