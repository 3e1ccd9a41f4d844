// ABOUTME: Chat service: scope the caller to a client, classify, route, and publish the exchange
// ABOUTME: Builder failures and panics become the apology reply tagged with the error data source

package chat

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mauromedda/medsupport-go/internal/eventbus"
	"github.com/mauromedda/medsupport-go/internal/intent"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/query"
	"github.com/mauromedda/medsupport-go/internal/store"
)

// ApologyReply is returned when answering fails.
const ApologyReply = "I apologize, but I encountered an error while processing your request. Please try again or contact support if the issue persists."

var (
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("chat: message is empty")
	// ErrNoClient is returned when the user is not linked to a primary client.
	ErrNoClient = errors.New("chat: user not linked to any client")
)

// Classifier assigns an intent to a message. It never fails.
type Classifier interface {
	Classify(ctx context.Context, input string) intent.Classification
}

// Router answers a message for an intent.
type Router interface {
	Route(ctx context.Context, in intent.Intent, req query.Request) (query.Result, error)
}

// Reply is what the caller sees.
type Reply struct {
	RequestID string           `json:"request_id"`
	Text      string           `json:"response"`
	Intent    intent.Intent    `json:"intent"`
	Source    query.DataSource `json:"data_source"`
}

// Exchange is one answered message, published to subscribers after Ask.
type Exchange struct {
	RequestID  string           `json:"request_id"`
	UserID     int64            `json:"user_id"`
	ClientID   int64            `json:"client_id"`
	Message    string           `json:"user_message"`
	Response   string           `json:"ai_response"`
	Intent     intent.Intent    `json:"intent"`
	Classifier string           `json:"classified_by"`
	Source     query.DataSource `json:"data_source"`
	Latency    time.Duration    `json:"latency_ns"`
	At         time.Time        `json:"timestamp"`
}

// Config wires a Service.
type Config struct {
	Directory     store.Directory
	Conversations store.Conversations
	Classifier    Classifier
	Router        Router
}

// Service answers chat messages.
type Service struct {
	dir        store.Directory
	conv       store.Conversations
	classifier Classifier
	router     Router
	bus        *eventbus.Bus[Exchange]

	now   func() time.Time
	newID func() string
}

// New creates a Service. Exchanges are persisted to cfg.Conversations through the
// service's bus; further subscribers can be added with Subscribe.
func New(cfg Config) *Service {
	s := &Service{
		dir:        cfg.Directory,
		conv:       cfg.Conversations,
		classifier: cfg.Classifier,
		router:     cfg.Router,
		bus:        eventbus.New[Exchange](),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	s.bus.Subscribe("chat-log", PersistTo(cfg.Conversations))
	return s
}

// Subscribers returns how many exchange subscribers are attached, including
// chat-log persistence.
func (s *Service) Subscribers() int {
	return s.bus.Count()
}

// Subscribe adds an exchange subscriber and returns its removal function.
func (s *Service) Subscribe(name string, h eventbus.Handler[Exchange]) func() {
	return s.bus.Subscribe(name, h)
}

// Ask answers message on behalf of userID.
func (s *Service) Ask(ctx context.Context, userID int64, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	start := s.now()

	clientID, err := s.clientFor(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	cls := s.classifier.Classify(ctx, message)
	pilog.Debug("chat: intent %s via %s for user %d", cls.Intent, cls.Source, userID)

	req := query.Request{ClientID: clientID, UserID: userID, Message: message}
	res, err := s.route(ctx, cls.Intent, req)
	if err != nil {
		pilog.Error("chat: answering %s for user %d: %v", cls.Intent, userID, err)
		res = query.Result{Text: ApologyReply, Source: query.SourceError}
	}

	ex := Exchange{
		RequestID:  s.newID(),
		UserID:     userID,
		ClientID:   clientID,
		Message:    message,
		Response:   res.Text,
		Intent:     cls.Intent,
		Classifier: cls.Source,
		Source:     res.Source,
		Latency:    s.now().Sub(start),
		At:         start.UTC(),
	}
	s.bus.Publish(ex)
	pilog.Info("chat: user=%d intent=%s source=%s latency=%s", userID, ex.Intent, ex.Source, ex.Latency)

	return Reply{RequestID: ex.RequestID, Text: res.Text, Intent: cls.Intent, Source: res.Source}, nil
}

// route calls the router, turning a panic into an error.
func (s *Service) route(ctx context.Context, in intent.Intent, req query.Request) (res query.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			pilog.Debug("chat: panic stack: %s", debug.Stack())
			err = fmt.Errorf("panic in %s builder: %v", in, r)
		}
	}()
	return s.router.Route(ctx, in, req)
}

func (s *Service) clientFor(ctx context.Context, userID int64) (int64, error) {
	clientID, err := s.dir.PrimaryClient(ctx, userID)
	if errors.Is(err, store.ErrNoPrimaryClient) {
		return 0, ErrNoClient
	}
	if err != nil {
		return 0, fmt.Errorf("resolving client for user %d: %w", userID, err)
	}
	return clientID, nil
}
