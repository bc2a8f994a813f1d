package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// OllamaService implements the summarizer using Ollama's chat API.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

// ollamaChatRequest is the request body for the Ollama chat API.
type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Format   string              `json:"format,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaChatResponse is the response from the Ollama chat API.
type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
}

// NewOllamaService creates a new Ollama summarizer service.
func NewOllamaService(baseURL, model string) (*OllamaService, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// Summarize extracts semantic units from a source file.
func (s *OllamaService) Summarize(ctx context.Context, relPath, content, language string) ([]Unit, error) {
	reqBody := ollamaChatRequest{
		Model: s.model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(relPath, content, language)},
		},
		Stream: false,
		Format: "json",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := s.baseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("Requesting summary from Ollama", "model", s.model, "file", relPath)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parseUnits(result.Message.Content)
}

// Provider returns the provider name.
func (s *OllamaService) Provider() Provider {
	return ProviderOllama
}

// ModelName returns the model name.
func (s *OllamaService) ModelName() string {
	return s.model
}
