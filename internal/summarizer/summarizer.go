// Package summarizer extracts semantic units from source files using an LLM.
//
// A unit is a named symbol (function, method, type, class) paired with a
// one-line natural language description of what it does. Units are what
// gets embedded and searched, not raw source text.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"codescout/internal/config"
)

// Provider represents an LLM provider type.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Unit is a single extracted symbol with its description.
type Unit struct {
	Name        string `json:"name"`
	Line        int    `json:"line"`
	Description string `json:"description"`
}

// EmbeddingText returns the text that represents this unit for embedding.
func (u Unit) EmbeddingText() string {
	return u.Name + ": " + u.Description
}

// Service defines the interface for summarizer services.
type Service interface {
	// Summarize extracts semantic units from a source file's content.
	Summarize(ctx context.Context, relPath, content, language string) ([]Unit, error)

	// Provider returns the provider name.
	Provider() Provider

	// ModelName returns the model name.
	ModelName() string
}

// NewService creates a summarizer service based on the configuration.
func NewService(cfg *config.Config) (Service, error) {
	switch cfg.Summarizer.Provider {
	case "ollama":
		return NewOllamaService(
			cfg.Summarizer.Ollama.URL,
			cfg.Summarizer.Ollama.Model,
		)
	case "openai":
		return NewOpenAIService(
			cfg.Summarizer.OpenAI.APIKey,
			cfg.Summarizer.OpenAI.Model,
			cfg.Summarizer.OpenAI.BaseURL,
		)
	case "anthropic":
		return NewAnthropicService(
			cfg.Summarizer.Anthropic.APIKey,
			cfg.Summarizer.Anthropic.Model,
		)
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", cfg.Summarizer.Provider)
	}
}

const systemPrompt = `You are a code analysis tool. Given a source file, list the symbols it defines: functions, methods, classes, types, and significant constants.

Respond with ONLY a JSON array, no prose. Each element must be an object with exactly these fields:
  "name": the symbol's name as written in the code
  "line": the 1-indexed line number where the symbol is defined
  "description": one sentence describing what the symbol does

If the file defines no symbols, respond with an empty array: []`

// buildPrompt composes the user message for a file.
func buildPrompt(relPath, content, language string) string {
	var b strings.Builder
	b.WriteString("File: ")
	b.WriteString(relPath)
	if language != "" {
		b.WriteString(" (")
		b.WriteString(language)
		b.WriteString(")")
	}
	b.WriteString("\n\n")
	b.WriteString(content)
	return b.String()
}

// parseUnits parses and validates the model's JSON response. Responses
// wrapped in markdown code fences are unwrapped first. Any shape
// violation fails the whole response; a partial parse would silently
// drop symbols.
func parseUnits(response string) ([]Unit, error) {
	cleaned := stripCodeFences(response)

	var raw []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	units := make([]Unit, 0, len(raw))
	for i, obj := range raw {
		name, ok := obj["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("element %d: missing or invalid name", i)
		}

		lineVal, ok := obj["line"].(float64)
		if !ok || lineVal < 1 || lineVal != float64(int(lineVal)) {
			return nil, fmt.Errorf("element %d: missing or invalid line", i)
		}

		desc, ok := obj["description"].(string)
		if !ok || desc == "" {
			return nil, fmt.Errorf("element %d: missing or invalid description", i)
		}

		units = append(units, Unit{
			Name:        name,
			Line:        int(lineVal),
			Description: desc,
		})
	}

	return units, nil
}

// stripCodeFences removes a wrapping markdown code fence if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}

	// Drop the opening fence line (may carry a language tag)
	lines = lines[1:]

	// Drop the closing fence line
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			lines = lines[:i]
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// languageKeywords are names models sometimes report as symbols when
// they misread declarations. A unit whose name is one of these carries
// no searchable meaning.
var languageKeywords = map[string]bool{
	"export":    true,
	"import":    true,
	"default":   true,
	"interface": true,
	"type":      true,
	"class":     true,
	"function":  true,
	"const":     true,
	"let":       true,
	"var":       true,
	"enum":      true,
	"namespace": true,
	"module":    true,
	"declare":   true,
	"async":     true,
	"return":    true,
	"package":   true,
	"func":      true,
	"struct":    true,
}

// IsKeywordName reports whether name is a bare language keyword.
func IsKeywordName(name string) bool {
	return languageKeywords[strings.ToLower(strings.TrimSpace(name))]
}

// FilterNoise removes units whose names are bare language keywords.
func FilterNoise(units []Unit) []Unit {
	filtered := make([]Unit, 0, len(units))
	for _, u := range units {
		if IsKeywordName(u.Name) {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered
}
