// ABOUTME: JSON HTTP surface over the chat service: chat, history, search, usage stats and health probes
// ABOUTME: Callers are identified by X-User-ID, set by the authenticating proxy in front of this service

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mauromedda/medsupport-go/internal/chat"
	pihttp "github.com/mauromedda/medsupport-go/internal/http"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/store"
	"github.com/mauromedda/medsupport-go/internal/telemetry"
)

// UserHeader carries the authenticated user id.
const UserHeader = "X-User-ID"

const readyTimeout = 3 * time.Second

// Chat is the part of *chat.Service the server uses.
type Chat interface {
	Ask(ctx context.Context, userID int64, message string) (chat.Reply, error)
	History(ctx context.Context, userID int64, limit int) ([]store.ChatLog, error)
	SearchHistory(ctx context.Context, userID int64, pattern string) ([]store.ChatLog, error)
}

// Config wires a Server.
type Config struct {
	Chat           Chat
	Usage          *telemetry.Tracker // optional; /stats is 404 without it
	Ready          func(ctx context.Context) error
	Environment    string
	Version        string
	RequestTimeout time.Duration
}

// Server routes HTTP requests.
type Server struct {
	cfg Config
	mux *http.ServeMux
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	s := &Server{cfg: cfg, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("GET /chat/history", s.handleHistory)
	s.mux.HandleFunc("GET /chat/search", s.handleSearch)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /health/live", s.handleLive)
	s.mux.HandleFunc("GET /health/ready", s.handleReady)
	return s
}

// Handler returns the hardened handler chain.
func (s *Server) Handler() http.Handler {
	return pihttp.SecurityHeaders(pihttp.LimitBody(pihttp.MaxRequestBody, s.mux))
}

// HTTPServer returns a configured *http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return pihttp.SecureHTTPServer(s.Handler(), addr, s.cfg.RequestTimeout)
}

type chatRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type historyEntry struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Intent      string    `json:"intent"`
	DataSource  string    `json:"data_source"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.user(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	reply, err := s.cfg.Chat.Ask(ctx, userID, req.Message)
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.user(w, r)
	if !ok {
		return
	}
	limit := chat.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	logs, err := s.cfg.Chat.History(r.Context(), userID, limit)
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntries(logs))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.user(w, r)
	if !ok {
		return
	}
	logs, err := s.cfg.Chat.SearchHistory(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntries(logs))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Usage == nil {
		writeError(w, http.StatusNotFound, "usage tracking disabled")
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Usage.Summary())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"environment": s.cfg.Environment,
		"version":     s.cfg.Version,
	})
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{"database": true, "status": "ready"}
	if s.cfg.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.cfg.Ready(ctx); err != nil {
			pilog.Error("server: readiness check failed: %v", err)
			checks["database"] = false
			checks["status"] = "not_ready"
			writeJSON(w, http.StatusServiceUnavailable, checks)
			return
		}
	}
	writeJSON(w, http.StatusOK, checks)
}

// user reads the caller id, writing 401 when it is missing or malformed.
func (s *Server) user(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(UserHeader))
	id, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || err != nil || id <= 0 {
		writeError(w, http.StatusUnauthorized, "missing or invalid "+UserHeader+" header")
		return 0, false
	}
	return id, true
}

// writeChatError maps service errors to status codes. Unexpected errors never
// leak their text to the client.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message must not be empty")
	case errors.Is(err, chat.ErrNoClient):
		writeError(w, http.StatusForbidden, "User not linked to any client")
	default:
		pilog.Error("server: %v", err)
		writeError(w, http.StatusInternalServerError, chat.ApologyReply)
	}
}

func toEntries(logs []store.ChatLog) []historyEntry {
	out := make([]historyEntry, len(logs))
	for i, l := range logs {
		out[i] = historyEntry{
			ID:          l.ID,
			Timestamp:   l.Timestamp,
			UserMessage: l.UserMessage,
			AIResponse:  l.AIResponse,
			Intent:      l.Intent,
			DataSource:  l.DataSource,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		pilog.Warn("server: writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
