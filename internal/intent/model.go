// ABOUTME: LLM-based intent classifier using a fixed category-only prompt.
// ABOUTME: Accepts only exact enum values; any other reply is an error for the caller to fall back on.

package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauromedda/medsupport-go/pkg/ai"
)

// CallFunc sends the system and user prompts and returns the raw reply text.
type CallFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// maxReplyTokens bounds the completion; a category name is a handful of tokens.
const maxReplyTokens = 50

// SystemPrompt lists every category except unknown and asks for the bare name.
var SystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	known := Known()
	cats := make([]string, len(known))
	for i, in := range known {
		cats[i] = in.String()
	}
	return "You are an expert intent detection system for a customer support chatbot in a medical equipment company.\n" +
		"Your task is to classify the user's message into one of the following predefined categories.\n" +
		"Respond with ONLY the category name.\n\n" +
		"Available categories:\n" + strings.Join(cats, ", ")
}

// LLMClassifier classifies intent by sending the fixed prompt to an LLM.
// It implements the ModelClassifier interface.
type LLMClassifier struct {
	callLLM CallFunc
}

// NewLLMClassifier creates a classifier that uses the provided LLM call function.
func NewLLMClassifier(callLLM CallFunc) *LLMClassifier {
	return &LLMClassifier{callLLM: callLLM}
}

// NewCompleterClassifier wires a chat-completion client at temperature 0.
func NewCompleterClassifier(c ai.Completer, model string) *LLMClassifier {
	return NewLLMClassifier(func(ctx context.Context, system, user string) (string, error) {
		resp, err := c.Complete(ctx, &ai.CompletionRequest{
			Model:       model,
			System:      system,
			Messages:    []ai.Message{ai.NewTextMessage(ai.RoleUser, user)},
			Temperature: 0,
			MaxTokens:   maxReplyTokens,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}

// Classify sends the classification prompt and parses the reply.
func (c *LLMClassifier) Classify(ctx context.Context, input string) (Classification, error) {
	response, err := c.callLLM(ctx, SystemPrompt, input)
	if err != nil {
		return Classification{}, fmt.Errorf("LLM call failed: %w", err)
	}
	return parseLLMResponse(response)
}

// parseLLMResponse accepts a reply that is exactly one category value after trimming whitespace.
func parseLLMResponse(response string) (Classification, error) {
	reply := strings.TrimSpace(response)
	in, ok := Parse(reply)
	if !ok {
		return Classification{}, fmt.Errorf("unrecognized category %q", reply)
	}
	return Classification{
		Intent: in,
		Source: "model",
		Signals: []Signal{{
			Name:   "llm_classification",
			Detail: reply,
		}},
	}, nil
}
