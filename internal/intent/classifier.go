// ABOUTME: Orchestrator: LLM-first classification with a deterministic keyword fallback.
// ABOUTME: Never fails; an unconfigured, failing, slow or off-script model yields the heuristic result.

package intent

import (
	"context"
	"time"

	pilog "github.com/mauromedda/medsupport-go/internal/log"
)

// DefaultTimeout bounds a single model classification call.
const DefaultTimeout = 10 * time.Second

// ClassifierConfig holds configuration for the intent classifier.
type ClassifierConfig struct {
	Model   ModelClassifier // Optional; nil means unconfigured and the heuristic is used directly.
	Timeout time.Duration   // Per-call bound on the model (default 10s).
}

// ModelClassifier is the interface for LLM-based classification.
type ModelClassifier interface {
	Classify(ctx context.Context, input string) (Classification, error)
}

// Classifier orchestrates intent classification.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a classifier with the given config, applying defaults.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Classifier{config: cfg}
}

// Configured reports whether a model is wired in.
func (c *Classifier) Configured() bool {
	return c.config.Model != nil
}

// Classify determines the intent of a user message. It always returns a value
// from the closed set.
func (c *Classifier) Classify(ctx context.Context, input string) Classification {
	if c.config.Model == nil {
		return ClassifyHeuristic(input)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	modelResult, err := c.callModel(callCtx, input)
	if err == nil {
		return modelResult
	}

	pilog.Warn("intent: model classification failed, using keywords: %v", err)
	result := ClassifyHeuristic(input)
	result.Signals = append(result.Signals, Signal{Name: "llm_error", Detail: err.Error()})
	return result
}

type modelReply struct {
	result Classification
	err    error
}

// callModel returns when the model answers or ctx expires, whichever comes first,
// so a model that ignores cancellation cannot stall the request.
func (c *Classifier) callModel(ctx context.Context, input string) (Classification, error) {
	ch := make(chan modelReply, 1)
	go func() {
		r, err := c.config.Model.Classify(ctx, input)
		ch <- modelReply{result: r, err: err}
	}()

	select {
	case r := <-ch:
		return r.result, r.err
	case <-ctx.Done():
		return Classification{}, ctx.Err()
	}
}
