// ABOUTME: Shared fixtures for builder tests: seeded memory store, fixed clock, fake retriever
// ABOUTME: The demo dataset is dated relative to fixedNow so expected dates are stable

package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mauromedda/medsupport-go/internal/rag"
	"github.com/mauromedda/medsupport-go/internal/store"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() Option {
	return WithClock(func() time.Time { return fixedNow })
}

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	m.SetClock(func() time.Time { return fixedNow })
	if err := m.Load(context.Background(), store.DemoDataset(fixedNow)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func demoRequest(msg string) Request {
	return Request{ClientID: 1, UserID: store.DemoUserID, Message: msg}
}

// fakeRetriever returns canned documents and records the queries it saw.
type fakeRetriever struct {
	mu    sync.Mutex
	docs  []rag.Document
	err   error
	calls []string
	lastK int
}

func (f *fakeRetriever) Query(_ context.Context, text string, k int) ([]rag.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	if len(f.docs) > k {
		return f.docs[:k], nil
	}
	return f.docs, nil
}

func (f *fakeRetriever) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// staleRetriever is a real retriever over an index built with a 128-dimension
// embedder, queried with a 1536-dimension one.
func staleRetriever(t *testing.T) *rag.Retriever {
	t.Helper()
	ctx := context.Background()
	idx := rag.NewMemoryIndex()
	vecs, _ := rag.HashEmbedder{Dim: 128}.Embed(ctx, []string{"Warranty covers parts for 24 months."})
	err := idx.ReplaceSource(ctx, "warranty.md", []rag.Entry{
		{ID: "w0", Text: "Warranty covers parts for 24 months.", Source: "warranty.md", Vector: vecs[0]},
	})
	if err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}
	return rag.NewRetriever(idx, rag.HashEmbedder{Dim: 1536}, 0)
}

var errBackend = errors.New("connection reset")

// brokenStore fails every call; builders must propagate the error.
type brokenStore struct{}

func (brokenStore) CountOrders(context.Context, store.Filter) (int, error) { return 0, errBackend }
func (brokenStore) ListOrders(context.Context, store.Filter) ([]store.Order, error) {
	return nil, errBackend
}
func (brokenStore) FindOrderByTracking(context.Context, int64, string) (*store.Order, error) {
	return nil, errBackend
}
func (brokenStore) CountInvoices(context.Context, store.Filter) (int, error) { return 0, errBackend }
func (brokenStore) ListInvoices(context.Context, store.Filter) ([]store.Invoice, error) {
	return nil, errBackend
}
func (brokenStore) SumInvoices(context.Context, store.Filter) (float64, error) { return 0, errBackend }
func (brokenStore) CountWarranties(context.Context, store.Filter) (int, error) {
	return 0, errBackend
}
func (brokenStore) ListWarranties(context.Context, store.Filter) ([]store.Warranty, error) {
	return nil, errBackend
}
func (brokenStore) CountAMCContracts(context.Context, store.Filter) (int, error) {
	return 0, errBackend
}
func (brokenStore) CountMaintenance(context.Context, store.Filter) (int, error) {
	return 0, errBackend
}
func (brokenStore) ListMaintenance(context.Context, store.Filter) ([]store.Maintenance, error) {
	return nil, errBackend
}
func (brokenStore) CountTickets(context.Context, store.Filter) (int, error) { return 0, errBackend }
func (brokenStore) ListTickets(context.Context, store.Filter) ([]store.Ticket, error) {
	return nil, errBackend
}
func (brokenStore) CreateTicket(context.Context, *store.Ticket) error { return errBackend }

type builderCase struct {
	name       string
	msg        string
	want       string
	wantSource DataSource
}

func runCases(t *testing.T, newBuilder func(t *testing.T) Builder, cases []builderCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := newBuilder(t).Build(context.Background(), demoRequest(tc.msg))
			if err != nil {
				t.Fatalf("Build(%q): %v", tc.msg, err)
			}
			if got.Text != tc.want {
				t.Errorf("Build(%q).Text =\n%q\nwant\n%q", tc.msg, got.Text, tc.want)
			}
			want := tc.wantSource
			if want == "" {
				want = SourceSQL
			}
			if got.Source != want {
				t.Errorf("Build(%q).Source = %q; want %q", tc.msg, got.Source, want)
			}
		})
	}
}
