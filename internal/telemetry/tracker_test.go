// ABOUTME: Tests for the usage tracker and the metered completer
// ABOUTME: Covers accumulation, averages, reset, copies, and concurrent recording

package telemetry

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/mauromedda/medsupport-go/pkg/ai"
)

func TestTracker_RecordExchange(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.RecordExchange("order_status", "sql", 10*time.Millisecond)
	tr.RecordExchange("general", "rag", 30*time.Millisecond)
	tr.RecordExchange("general", "none", 20*time.Millisecond)
	tr.RecordExchange("payment_invoice_queries", "error", 40*time.Millisecond)

	s := tr.Summary()
	if s.TotalMessages != 4 {
		t.Errorf("TotalMessages = %d; want 4", s.TotalMessages)
	}
	if s.RAGQueries != 1 {
		t.Errorf("RAGQueries = %d; want 1", s.RAGQueries)
	}
	if s.Errors != 1 {
		t.Errorf("Errors = %d; want 1", s.Errors)
	}
	if math.Abs(s.AvgResponseMillis-25) > 1e-9 {
		t.Errorf("AvgResponseMillis = %v; want 25", s.AvgResponseMillis)
	}
	if s.ByIntent["general"] != 2 || s.BySource["sql"] != 1 {
		t.Errorf("ByIntent = %v, BySource = %v", s.ByIntent, s.BySource)
	}
}

func TestTracker_EmptyAverage(t *testing.T) {
	t.Parallel()

	if got := NewTracker().Summary().AvgResponseMillis; got != 0 {
		t.Errorf("AvgResponseMillis = %v; want 0", got)
	}
}

func TestTracker_RecordTokens(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.RecordTokens("gpt-4o", 1000, 10)
	tr.RecordTokens("text-embedding-3-small", 5000, 0)

	s := tr.Summary()
	if s.ModelCalls != 2 || s.InputTokens != 6000 || s.OutputTokens != 10 {
		t.Errorf("Summary = %+v; want 2 calls, 6000 in, 10 out", s)
	}
	want := EstimateCost("gpt-4o", 1000, 10) + EstimateCost("text-embedding-3-small", 5000, 0)
	if math.Abs(s.CostUSD-want) > 1e-12 {
		t.Errorf("CostUSD = %v; want %v", s.CostUSD, want)
	}
}

func TestTracker_Reset(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return start }
	tr.RecordExchange("general", "rag", time.Second)
	tr.RecordTokens("gpt-4o", 1, 1)
	tr.Reset()

	s := tr.Summary()
	if s.TotalMessages != 0 || s.ModelCalls != 0 || len(s.ByIntent) != 0 || s.CostUSD != 0 {
		t.Errorf("Summary after Reset = %+v; want zero counters", s)
	}
	if !s.Since.Equal(start) {
		t.Errorf("Since = %v; want %v", s.Since, start)
	}
}

func TestTracker_SummaryIsCopy(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.RecordExchange("general", "rag", 0)
	s := tr.Summary()
	s.ByIntent["general"] = 99

	if got := tr.Summary().ByIntent["general"]; got != 1 {
		t.Errorf("ByIntent[general] = %d; want 1", got)
	}
}

func TestTracker_Concurrent(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.RecordExchange("general", "none", time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			tr.RecordTokens("gpt-4o", 10, 1)
		}()
	}
	wg.Wait()

	s := tr.Summary()
	if s.TotalMessages != 100 || s.ModelCalls != 100 || s.InputTokens != 1000 {
		t.Errorf("Summary = %+v; want 100 messages, 100 calls, 1000 input tokens", s)
	}
}

type stubCompleter struct {
	resp *ai.Completion
	err  error
}

func (s stubCompleter) Complete(context.Context, *ai.CompletionRequest) (*ai.Completion, error) {
	return s.resp, s.err
}

func TestMeteredCompleter(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	m := MeteredCompleter{
		Completer: stubCompleter{resp: &ai.Completion{Text: "general", Usage: ai.Usage{InputTokens: 120, OutputTokens: 2}}},
		Tracker:   tr,
	}
	resp, err := m.Complete(context.Background(), &ai.CompletionRequest{Model: "gpt-4o"})
	if err != nil || resp.Text != "general" {
		t.Fatalf("Complete = %v, %v; want general, nil", resp, err)
	}
	s := tr.Summary()
	if s.ModelCalls != 1 || s.InputTokens != 120 || s.OutputTokens != 2 {
		t.Errorf("Summary = %+v; want 1 call with 120/2 tokens", s)
	}
	if s.CostUSD != EstimateCost("gpt-4o", 120, 2) {
		t.Errorf("CostUSD = %v; want request model pricing", s.CostUSD)
	}

	failing := MeteredCompleter{Completer: stubCompleter{err: errors.New("429")}, Tracker: tr}
	if _, err := failing.Complete(context.Background(), &ai.CompletionRequest{Model: "gpt-4o"}); err == nil {
		t.Fatal("Complete error = nil; want error")
	}
	if got := tr.Summary().ModelCalls; got != 1 {
		t.Errorf("ModelCalls after failure = %d; want 1", got)
	}
}
