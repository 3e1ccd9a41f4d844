// ABOUTME: HTTP tests for the chat API over the seeded memory store and keyword classifier
// ABOUTME: Exercises status mapping, history, search, stats and health probes through httptest

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mauromedda/medsupport-go/internal/chat"
	"github.com/mauromedda/medsupport-go/internal/intent"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/router"
	"github.com/mauromedda/medsupport-go/internal/store"
	"github.com/mauromedda/medsupport-go/internal/telemetry"
)

func init() {
	pilog.SetOutput(io.Discard)
}

func newTestServer(t *testing.T, ready func(context.Context) error) (*httptest.Server, *telemetry.Tracker) {
	t.Helper()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	db := store.NewMemory()
	db.SetClock(func() time.Time { return now })
	if err := db.Load(context.Background(), store.DemoDataset(now)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	svc := chat.New(chat.Config{
		Directory:     db,
		Conversations: db,
		Classifier:    intent.NewClassifier(intent.ClassifierConfig{}),
		Router:        router.New(db, nil),
	})
	usage := telemetry.NewTracker()
	svc.Subscribe("usage", chat.RecordUsage(usage))

	srv := New(Config{
		Chat:        svc,
		Usage:       usage,
		Ready:       ready,
		Environment: "test",
		Version:     "v0.0.0-test",
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, usage
}

func do(t *testing.T, method, url, user, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestChat_AnswersFromStore(t *testing.T) {
	t.Parallel()
	ts, usage := newTestServer(t, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/chat", "1", `{"message":"how many orders do I have"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	var reply struct {
		Response   string `json:"response"`
		Intent     string `json:"intent"`
		DataSource string `json:"data_source"`
		RequestID  string `json:"request_id"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatalf("decoding %s: %v", body, err)
	}
	if reply.Intent != "order_status" {
		t.Errorf("intent = %q, want order_status", reply.Intent)
	}
	if reply.DataSource != "sql" {
		t.Errorf("data_source = %q, want sql", reply.DataSource)
	}
	if reply.Response != "You have 3 orders." {
		t.Errorf("response = %q", reply.Response)
	}
	if reply.RequestID == "" {
		t.Error("request_id is empty")
	}
	if got := usage.Summary().TotalMessages; got != 1 {
		t.Errorf("TotalMessages = %d, want 1", got)
	}
}

func TestChat_ErrorStatuses(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		user   string
		body   string
		status int
	}{
		{"missing user", "", `{"message":"hi"}`, http.StatusUnauthorized},
		{"bad user", "abc", `{"message":"hi"}`, http.StatusUnauthorized},
		{"bad json", "1", `{"message":`, http.StatusBadRequest},
		{"empty message", "1", `{"message":"   "}`, http.StatusBadRequest},
		{"no client", "99", `{"message":"how many orders"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, ts.URL+"/chat", tt.user, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, body)
			}
			var e errorResponse
			if err := json.Unmarshal(body, &e); err != nil || e.Detail == "" {
				t.Errorf("expected JSON error detail, got %s", body)
			}
		})
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, nil)

	resp, _ := do(t, http.MethodGet, ts.URL+"/chat", "1", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHistoryAndSearch(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, nil)

	for _, msg := range []string{"how many orders do I have", "show my invoices"} {
		resp, body := do(t, http.MethodPost, ts.URL+"/chat", "1", `{"message":"`+msg+`"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("chat %q: status %d, body %s", msg, resp.StatusCode, body)
		}
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/chat/history?limit=1", "1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	var entries []historyEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(entries) != 1 || entries[0].UserMessage != "show my invoices" {
		t.Errorf("history = %+v, want only the newest exchange", entries)
	}
	if entries[0].Intent != "payment_invoice_queries" {
		t.Errorf("intent = %q", entries[0].Intent)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/chat/search?q=ordrs", "1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d", resp.StatusCode)
	}
	entries = nil
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("decoding search: %v", err)
	}
	if len(entries) != 1 || !strings.Contains(entries[0].UserMessage, "orders") {
		t.Errorf("search = %+v, want the orders question", entries)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/chat/history?limit=x", "1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, nil)

	do(t, http.MethodPost, ts.URL+"/chat", "1", `{"message":"what is the weather"}`)

	resp, body := do(t, http.MethodGet, ts.URL+"/stats", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var s telemetry.Summary
	if err := json.Unmarshal(body, &s); err != nil {
		t.Fatal(err)
	}
	if s.TotalMessages != 1 || s.BySource["none"] != 1 {
		t.Errorf("summary = %+v, want one message answered with no data", s)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ok, _ := newTestServer(t, func(context.Context) error { return nil })
	down, _ := newTestServer(t, func(context.Context) error { return errors.New("connection refused") })

	resp, body := do(t, http.MethodGet, ok.URL+"/health", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"healthy"`) {
		t.Errorf("/health = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, http.MethodGet, ok.URL+"/health/live", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health/live = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ok.URL+"/health/ready", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health/ready = %d, want 200", resp.StatusCode)
	}
	resp, body = do(t, http.MethodGet, down.URL+"/health/ready", "", "")
	if resp.StatusCode != http.StatusServiceUnavailable || !strings.Contains(string(body), "not_ready") {
		t.Errorf("/health/ready when down = %d %s", resp.StatusCode, body)
	}
}
