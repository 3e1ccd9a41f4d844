// ABOUTME: Built-in model definitions for chat classification and document embedding
// ABOUTME: FindModel resolves configured IDs to metadata via a pre-built index

package ai

// Built-in model definitions.
var (
	ModelGPT4o = Model{
		ID:              "gpt-4o",
		Name:            "GPT-4o",
		Api:             ApiOpenAI,
		MaxOutputTokens: 16384,
	}

	ModelGPT4oMini = Model{
		ID:              "gpt-4o-mini",
		Name:            "GPT-4o Mini",
		Api:             ApiOpenAI,
		MaxOutputTokens: 16384,
	}

	ModelTextEmbedding3Small = Model{
		ID:         "text-embedding-3-small",
		Name:       "Text Embedding 3 Small",
		Api:        ApiOpenAI,
		Dimensions: 1536,
	}

	ModelTextEmbedding3Large = Model{
		ID:         "text-embedding-3-large",
		Name:       "Text Embedding 3 Large",
		Api:        ApiOpenAI,
		Dimensions: 3072,
	}
)

// BuiltinModels returns all built-in model definitions.
func BuiltinModels() []Model {
	return []Model{
		ModelGPT4o,
		ModelGPT4oMini,
		ModelTextEmbedding3Small,
		ModelTextEmbedding3Large,
	}
}

// modelIndex is a pre-built map for O(1) model lookups by ID.
var modelIndex = func() map[string]*Model {
	models := BuiltinModels()
	idx := make(map[string]*Model, len(models))
	for i := range models {
		idx[models[i].ID] = &models[i]
	}
	return idx
}()

// FindModel looks up a model by ID from the built-in list.
// Returns nil if not found.
func FindModel(id string) *Model {
	return modelIndex[id]
}
