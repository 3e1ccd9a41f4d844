// ABOUTME: Running usage statistics: messages, intents, data sources, latency, tokens and cost
// ABOUTME: Goroutine-safe; fed by the chat exchange bus and by metered model clients

package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/mauromedda/medsupport-go/pkg/ai"
)

// Summary is a point-in-time copy of the tracked counters.
type Summary struct {
	TotalMessages     int            `json:"total_messages"`
	RAGQueries        int            `json:"rag_queries"`
	Errors            int            `json:"errors"`
	AvgResponseMillis float64        `json:"avg_response_time_ms"`
	ByIntent          map[string]int `json:"by_intent"`
	BySource          map[string]int `json:"by_source"`
	ModelCalls        int            `json:"model_calls"`
	InputTokens       int            `json:"input_tokens"`
	OutputTokens      int            `json:"output_tokens"`
	CostUSD           float64        `json:"cost_usd"`
	Since             time.Time      `json:"since"`
}

// Tracker accumulates usage since creation or the last Reset.
type Tracker struct {
	mu           sync.Mutex
	now          func() time.Time
	since        time.Time
	messages     int
	ragQueries   int
	errors       int
	totalLatency time.Duration
	byIntent     map[string]int
	bySource     map[string]int
	calls        int
	inTokens     int
	outTokens    int
	cost         float64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.reset()
	return t
}

func (t *Tracker) reset() {
	t.since = t.now()
	t.messages, t.ragQueries, t.errors = 0, 0, 0
	t.totalLatency = 0
	t.byIntent = make(map[string]int)
	t.bySource = make(map[string]int)
	t.calls, t.inTokens, t.outTokens = 0, 0, 0
	t.cost = 0
}

// RecordExchange counts one answered message.
func (t *Tracker) RecordExchange(intent, source string, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages++
	t.totalLatency += latency
	t.byIntent[intent]++
	t.bySource[source]++
	switch source {
	case "rag":
		t.ragQueries++
	case "error":
		t.errors++
	}
}

// RecordTokens counts one model call.
func (t *Tracker) RecordTokens(model string, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	t.inTokens += inputTokens
	t.outTokens += outputTokens
	t.cost += EstimateCost(model, inputTokens, outputTokens)
}

// Summary returns a copy of the counters.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Summary{
		TotalMessages: t.messages,
		RAGQueries:    t.ragQueries,
		Errors:        t.errors,
		ByIntent:      make(map[string]int, len(t.byIntent)),
		BySource:      make(map[string]int, len(t.bySource)),
		ModelCalls:    t.calls,
		InputTokens:   t.inTokens,
		OutputTokens:  t.outTokens,
		CostUSD:       t.cost,
		Since:         t.since,
	}
	if t.messages > 0 {
		s.AvgResponseMillis = float64(t.totalLatency.Microseconds()) / 1000 / float64(t.messages)
	}
	for k, v := range t.byIntent {
		s.ByIntent[k] = v
	}
	for k, v := range t.bySource {
		s.BySource[k] = v
	}
	return s
}

// Reset clears every counter.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

// MeteredCompleter records token usage of every successful completion.
type MeteredCompleter struct {
	ai.Completer
	Tracker *Tracker
}

// Complete forwards to the wrapped completer.
func (m MeteredCompleter) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.Completion, error) {
	resp, err := m.Completer.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	model := resp.Model
	if model == "" {
		model = req.Model
	}
	m.Tracker.RecordTokens(model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return resp, nil
}
