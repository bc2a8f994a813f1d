package summarizer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIService implements the summarizer using OpenAI.
type OpenAIService struct {
	client openai.Client
	model  string
}

// NewOpenAIService creates a new OpenAI summarizer service.
func NewOpenAIService(apiKey, model, baseURL string) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIService{
		client: client,
		model:  model,
	}, nil
}

// Summarize extracts semantic units from a source file.
func (s *OpenAIService) Summarize(ctx context.Context, relPath, content, language string) ([]Unit, error) {
	log.Debug("Requesting summary from OpenAI", "model", s.model, "file", relPath)

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(relPath, content, language)),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	return parseUnits(resp.Choices[0].Message.Content)
}

// Provider returns the provider name.
func (s *OpenAIService) Provider() Provider {
	return ProviderOpenAI
}

// ModelName returns the model name.
func (s *OpenAIService) ModelName() string {
	return s.model
}
