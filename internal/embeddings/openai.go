package embeddings

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIService implements the embedding service using the OpenAI API.
type OpenAIService struct {
	client     openai.Client
	model      string
	dimensions int
}

// NewOpenAIService creates a new OpenAI embedding service.
func NewOpenAIService(apiKey, model, baseURL string, dimensions int) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	// Build client options
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	// Get dimensions for the model if not specified
	if dimensions == 0 {
		dimensions = GetModelDimensions(model)
		if dimensions == 0 {
			// Default for unknown models
			dimensions = 1536
			log.Debug("Unknown model dimensions, defaulting", "model", model, "dimensions", dimensions)
		}
	}

	return &OpenAIService{
		client:     client,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed generates an embedding for document text.
func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	log.Debug("Requesting embedding from OpenAI", "model", s.model)

	resp, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(s.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float32(v)
	}

	// Update dimensions from the response
	s.dimensions = len(embedding)

	return embedding, nil
}

// EmbedQuery generates an embedding for query text.
// OpenAI doesn't use task prefixes, so this is the same as Embed.
func (s *OpenAIService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.Embed(ctx, text)
}

// Dimensions returns the embedding dimensions.
func (s *OpenAIService) Dimensions() int {
	return s.dimensions
}

// Provider returns the provider name.
func (s *OpenAIService) Provider() Provider {
	return ProviderOpenAI
}

// ModelName returns the model name.
func (s *OpenAIService) ModelName() string {
	return s.model
}
