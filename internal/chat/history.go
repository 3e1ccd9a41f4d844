// ABOUTME: Chat history for the caller's client scope, plus fuzzy search over past messages
// ABOUTME: History is capped at the 50 most recent exchanges

package chat

import (
	"context"
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/medsupport-go/internal/store"
)

// HistoryLimit is the most entries History returns.
const HistoryLimit = 50

// History returns the user's latest exchanges in their primary client, newest first.
// A limit outside 1..HistoryLimit means HistoryLimit.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]store.ChatLog, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	clientID, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.conv.ChatHistory(ctx, userID, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return logs, nil
}

type logMessages []store.ChatLog

func (l logMessages) String(i int) string { return l[i].UserMessage }
func (l logMessages) Len() int            { return len(l) }

// SearchHistory fuzzy-matches pattern against the user's recent messages and
// returns the matches best first.
func (s *Service) SearchHistory(ctx context.Context, userID int64, pattern string) ([]store.ChatLog, error) {
	logs, err := s.History(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return logs, nil
	}
	matches := fuzzy.FindFrom(pattern, logMessages(logs))
	out := make([]store.ChatLog, len(matches))
	for i, m := range matches {
		out[i] = logs[m.Index]
	}
	return out, nil
}
