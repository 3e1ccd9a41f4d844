// ABOUTME: Exchange subscribers: compliance chat-log persistence and usage statistics
// ABOUTME: Failures are logged; a subscriber never changes the reply already computed

package chat

import (
	"context"
	"time"

	"github.com/mauromedda/medsupport-go/internal/eventbus"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/store"
	"github.com/mauromedda/medsupport-go/internal/telemetry"
)

const persistTimeout = 5 * time.Second

// PersistTo appends every exchange to the chat log.
func PersistTo(conv store.Conversations) eventbus.Handler[Exchange] {
	return func(ex Exchange) {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		l := &store.ChatLog{
			UserID:      ex.UserID,
			ClientID:    ex.ClientID,
			Timestamp:   ex.At,
			UserMessage: ex.Message,
			AIResponse:  ex.Response,
			Intent:      ex.Intent.String(),
			DataSource:  string(ex.Source),
			RequestID:   ex.RequestID,
		}
		if err := conv.AppendChatLog(ctx, l); err != nil {
			pilog.Error("chat: failed to log exchange %s: %v", ex.RequestID, err)
		}
	}
}

// RecordUsage counts every exchange in tr.
func RecordUsage(tr *telemetry.Tracker) eventbus.Handler[Exchange] {
	return func(ex Exchange) {
		tr.RecordExchange(ex.Intent.String(), string(ex.Source), ex.Latency)
	}
}
