// Package embeddings provides text embedding services for semantic retrieval.
package embeddings

import (
	"context"
	"fmt"

	"codescout/internal/config"
)

// Provider represents an embedding provider type.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// Service defines the interface for embedding services.
//
// Units are embedded one at a time so that a single failed unit never
// takes down its neighbors.
type Service interface {
	// Embed generates an embedding for the given text (for documents).
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery generates an embedding for a query (may use different task prefix).
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimensions for this model.
	Dimensions() int

	// Provider returns the provider name.
	Provider() Provider

	// ModelName returns the model name.
	ModelName() string
}

// Known model dimensions
var modelDimensions = map[string]int{
	// Ollama models
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
	"snowflake-arctic-embed": 1024,

	// OpenAI models
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// GetModelDimensions returns the known dimensions for a model, or 0 if unknown.
func GetModelDimensions(model string) int {
	return modelDimensions[model]
}

// NewService creates an embedding service based on the configuration.
func NewService(cfg *config.Config) (Service, error) {
	switch cfg.Embeddings.Provider {
	case "ollama":
		return NewOllamaService(
			cfg.Embeddings.Ollama.URL,
			cfg.Embeddings.Ollama.Model,
		)
	case "openai":
		return NewOpenAIService(
			cfg.Embeddings.OpenAI.APIKey,
			cfg.Embeddings.OpenAI.Model,
			cfg.Embeddings.OpenAI.BaseURL,
			cfg.Embeddings.OpenAI.Dimensions,
		)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embeddings.Provider)
	}
}

// NewServiceForIndex creates an embedding service matching an existing
// index's recorded provider and model. Queries must be embedded by the
// same model that produced the stored vectors.
func NewServiceForIndex(provider, model string, cfg *config.Config) (Service, error) {
	switch provider {
	case "ollama":
		return NewOllamaService(
			cfg.Embeddings.Ollama.URL,
			model,
		)
	case "openai":
		return NewOpenAIService(
			cfg.Embeddings.OpenAI.APIKey,
			model,
			cfg.Embeddings.OpenAI.BaseURL,
			cfg.Embeddings.OpenAI.Dimensions,
		)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
