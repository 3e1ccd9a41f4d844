// ABOUTME: Token pricing for the OpenAI chat and embedding models the service calls
// ABOUTME: Dated model snapshots resolve to their family by longest prefix

package telemetry

import "strings"

// ModelPricing holds per-million-token rates for a model in USD.
// Embedding models bill input only.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var pricing = map[string]ModelPricing{
	"gpt-4o":                 {InputPerMillion: 2.50, OutputPerMillion: 10.0},
	"gpt-4o-mini":            {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4.1":                {InputPerMillion: 2.00, OutputPerMillion: 8.0},
	"gpt-4.1-mini":           {InputPerMillion: 0.40, OutputPerMillion: 1.60},
	"gpt-3.5-turbo":          {InputPerMillion: 0.50, OutputPerMillion: 1.50},
	"text-embedding-3-small": {InputPerMillion: 0.02},
	"text-embedding-3-large": {InputPerMillion: 0.13},
	"text-embedding-ada-002": {InputPerMillion: 0.10},
}

// LookupPricing returns the rates for modelID and whether they are known.
// Unknown models (local or self-hosted endpoints) cost nothing.
func LookupPricing(modelID string) (ModelPricing, bool) {
	if p, ok := pricing[modelID]; ok {
		return p, true
	}
	best := ""
	for key := range pricing {
		if strings.HasPrefix(modelID, key+"-") && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return ModelPricing{}, false
	}
	return pricing[best], true
}

// EstimateCost returns the USD cost of one call.
func EstimateCost(modelID string, inputTokens, outputTokens int) float64 {
	p, _ := LookupPricing(modelID)
	return float64(inputTokens)/1_000_000*p.InputPerMillion +
		float64(outputTokens)/1_000_000*p.OutputPerMillion
}
