// ABOUTME: OpenAI Chat Completions and Embeddings client (also works with Ollama, vLLM)
// ABOUTME: Implements ai.Completer and ai.Embedder over the retrying HTTP client

package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/pkg/ai"
	"github.com/mauromedda/medsupport-go/pkg/ai/internal/httputil"
)

const (
	defaultBaseURL     = "https://api.openai.com"
	chatCompletionPath = "/chat/completions"
	embeddingsPath     = "/embeddings"
)

// Provider implements the OpenAI Chat Completions and Embeddings APIs.
// A provider without an API key is unconfigured: every call returns ai.ErrUnconfigured
// without touching the network.
type Provider struct {
	client         *httputil.Client
	configured     bool
	embeddingModel string
}

// New creates an OpenAI provider. An empty apiKey falls back to OPENAI_API_KEY.
func New(apiKey, baseURL string) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = httputil.APIRoot(baseURL)

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + apiKey,
	}

	return &Provider{
		client:         httputil.NewClient(baseURL, headers),
		configured:     apiKey != "",
		embeddingModel: ai.ModelTextEmbedding3Small.ID,
	}
}

// Api returns the provider identifier.
func (p *Provider) Api() ai.Api {
	return ai.ApiOpenAI
}

// Configured reports whether the provider has credentials.
func (p *Provider) Configured() bool {
	return p.configured
}

// SetTimeout bounds every HTTP request made by the provider.
func (p *Provider) SetTimeout(d time.Duration) {
	p.client.SetTimeout(d)
}

// SetEmbeddingModel selects the model used by Embed.
func (p *Provider) SetEmbeddingModel(model string) {
	if model != "" {
		p.embeddingModel = model
	}
}

// Complete performs a single non-streaming chat completion.
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.Completion, error) {
	if !p.configured {
		return nil, ai.ErrUnconfigured
	}

	pilog.Debug("http: POST %s%s model=%s", p.client.BaseURL(), chatCompletionPath, req.Model)
	var resp chatResponse
	if err := p.client.PostJSON(ctx, chatCompletionPath, buildChatRequest(req), &resp); err != nil {
		return nil, wrapAPIError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: chat completion returned no choices")
	}

	choice := resp.Choices[0]
	out := &ai.Completion{
		Text:       choice.Message.Content,
		StopReason: mapFinishReason(choice.FinishReason),
		Model:      resp.Model,
	}
	if resp.Usage != nil {
		out.Usage = ai.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}
	return out, nil
}

// Embed returns one embedding per input, in input order.
func (p *Provider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if !p.configured {
		return nil, ai.ErrUnconfigured
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	pilog.Debug("http: POST %s%s model=%s inputs=%d", p.client.BaseURL(), embeddingsPath, p.embeddingModel, len(inputs))
	var resp embeddingResponse
	req := embeddingRequest{Model: p.embeddingModel, Input: inputs}
	if err := p.client.PostJSON(ctx, embeddingsPath, req, &resp); err != nil {
		return nil, wrapAPIError("embeddings", err)
	}

	vecs, ok := orderEmbeddings(resp.Data, len(inputs))
	if !ok {
		return nil, fmt.Errorf("openai: embeddings returned %d vectors for %d inputs", len(resp.Data), len(inputs))
	}
	return vecs, nil
}

func wrapAPIError(op string, err error) error {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("openai %s API error (status %d): %s", op, se.StatusCode, se.Body)
	}
	return fmt.Errorf("openai %s: %w", op, err)
}
