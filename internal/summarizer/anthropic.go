package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicService implements the summarizer using Anthropic Claude.
type AnthropicService struct {
	apiKey string
	model  string
	apiURL string
	client *http.Client
}

// anthropicRequest is the request body for the Anthropic API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response from the Anthropic API.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewAnthropicService creates a new Anthropic summarizer service.
func NewAnthropicService(apiKey, model string) (*AnthropicService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		apiURL: anthropicAPIURL,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// Summarize extracts semantic units from a source file.
func (s *AnthropicService) Summarize(ctx context.Context, relPath, content, language string) ([]Unit, error) {
	log.Debug("Requesting summary from Anthropic", "model", s.model, "file", relPath)

	reqBody := anthropicRequest{
		Model: s.model,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildPrompt(relPath, content, language)},
		},
		System:    systemPrompt,
		MaxTokens: 4096,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, string(body))
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return parseUnits(result.Content[0].Text)
}

// Provider returns the provider name.
func (s *AnthropicService) Provider() Provider {
	return ProviderAnthropic
}

// ModelName returns the model name.
func (s *AnthropicService) ModelName() string {
	return s.model
}
