// ABOUTME: Streams chat exchanges to a Kafka topic as JSON, keyed by request id
// ABOUTME: The writer runs async so a slow broker never delays a reply

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mauromedda/medsupport-go/internal/eventbus"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
)

const auditWriteTimeout = 5 * time.Second

// MessageWriter is the subset of *kafka.Writer the auditor uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Auditor publishes exchanges to Kafka.
type Auditor struct {
	w MessageWriter
}

// NewKafkaAuditor creates an Auditor writing to topic on brokers.
func NewKafkaAuditor(brokers []string, topic string) *Auditor {
	return NewAuditor(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				pilog.Warn("chat: audit write of %d messages failed: %v", len(msgs), err)
			}
		},
	})
}

// NewAuditor wraps an existing writer.
func NewAuditor(w MessageWriter) *Auditor {
	return &Auditor{w: w}
}

// auditRecord is the wire shape on the topic.
type auditRecord struct {
	RequestID  string    `json:"request_id"`
	UserID     int64     `json:"user_id"`
	ClientID   int64     `json:"client_id"`
	Message    string    `json:"user_message"`
	Response   string    `json:"ai_response"`
	Intent     string    `json:"intent"`
	Classifier string    `json:"classified_by"`
	DataSource string    `json:"data_source"`
	LatencyMS  float64   `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Handler returns the bus subscriber.
func (a *Auditor) Handler() eventbus.Handler[Exchange] {
	return func(ex Exchange) {
		if err := a.Publish(context.Background(), ex); err != nil {
			pilog.Warn("chat: %v", err)
		}
	}
}

// Publish writes one exchange.
func (a *Auditor) Publish(ctx context.Context, ex Exchange) error {
	value, err := json.Marshal(auditRecord{
		RequestID:  ex.RequestID,
		UserID:     ex.UserID,
		ClientID:   ex.ClientID,
		Message:    ex.Message,
		Response:   ex.Response,
		Intent:     ex.Intent.String(),
		Classifier: ex.Classifier,
		DataSource: string(ex.Source),
		LatencyMS:  float64(ex.Latency.Microseconds()) / 1000,
		Timestamp:  ex.At,
	})
	if err != nil {
		return fmt.Errorf("encoding audit record %s: %w", ex.RequestID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, auditWriteTimeout)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(ex.RequestID),
		Value: value,
		Time:  ex.At,
		Headers: []kafka.Header{
			{Key: "client_id", Value: []byte(strconv.FormatInt(ex.ClientID, 10))},
		},
	}
	if err := a.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing audit record %s: %w", ex.RequestID, err)
	}
	return nil
}

// Close flushes pending messages.
func (a *Auditor) Close() error {
	return a.w.Close()
}
