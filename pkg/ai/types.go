// ABOUTME: Core AI SDK types: Message, Content, Usage, Model, completion and embedding contracts
// ABOUTME: Shared by the intent classifier and the retrieval layer; wire-format agnostic

package ai

import (
	"context"
	"errors"
)

// ErrUnconfigured is returned by clients that have no credentials to call out with.
var ErrUnconfigured = errors.New("ai: provider not configured")

// Role represents a message role in the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopStop      StopReason = "stop"
)

// ContentType identifies the kind of content block.
type ContentType string

const ContentText ContentType = "text"

// Content represents a content block within a message.
type Content struct {
	Type ContentType `json:"type"`
	Text string      `json:"text,omitempty"`
}

// Message represents a conversation message.
type Message struct {
	Role    Role      `json:"role"`
	Content []Content `json:"content"`
}

// NewTextMessage creates a message with a single text content block.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:    role,
		Content: []Content{{Type: ContentText, Text: text}},
	}
}

// Text concatenates the text blocks of the message.
func (m Message) Text() string {
	var out string
	for _, c := range m.Content {
		if c.Type == ContentText {
			out += c.Text
		}
	}
	return out
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Api identifies an API provider.
type Api string

const ApiOpenAI Api = "openai"

// Model defines a model's metadata.
type Model struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Api             Api    `json:"api"`
	MaxOutputTokens int    `json:"max_output_tokens,omitempty"`
	Dimensions      int    `json:"dimensions,omitempty"` // Embedding models only
}

// CompletionRequest is a single non-streaming chat completion call.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64 // Sent verbatim; 0 means deterministic, not "provider default"
	MaxTokens   int
}

// Completion is the result of a chat completion.
type Completion struct {
	Text       string
	StopReason StopReason
	Usage      Usage
	Model      string
}

// Completer produces chat completions.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}
