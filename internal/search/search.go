// Package search provides semantic retrieval over the unit index.
package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"codescout/internal/embeddings"
	"codescout/internal/store"
)

// DefaultTopK is the number of results returned when the caller does not
// ask for a specific count.
const DefaultTopK = 20

// Searcher provides semantic search over the indexed units.
type Searcher struct {
	store    store.Store
	embedder embeddings.Service
}

// Result represents a single search hit.
type Result struct {
	FileID      string  `json:"file"`
	Symbol      string  `json:"symbol"`
	Line        int     `json:"line"`
	Description string  `json:"description"`
	Language    string  `json:"language,omitempty"`
	Score       float64 `json:"score"`    // 0-1, higher is better
	Distance    float64 `json:"distance"` // cosine distance
}

// Options configures the search.
type Options struct {
	// TopK is the maximum number of results to return.
	TopK int

	// MinScore filters results below this similarity score.
	MinScore float64
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		TopK:     DefaultTopK,
		MinScore: 0.0,
	}
}

// New creates a new Searcher.
func New(st store.Store, emb embeddings.Service) *Searcher {
	return &Searcher{
		store:    st,
		embedder: emb,
	}
}

// Search embeds the query and returns the nearest units, best match
// first. Searching an index that has never been populated returns no
// results and no error.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	meta, err := s.store.Meta()
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	if meta == nil {
		log.Debug("Index is empty, nothing to search")
		return nil, nil
	}

	log.Debug("Generating query embedding", "query", truncate(query, 50))
	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if len(queryEmbedding) != meta.EmbeddingDimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, index has %d: %w",
			len(queryEmbedding), meta.EmbeddingDimensions, store.ErrDimensionMismatch)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	log.Debug("Searching index", "topK", topK)
	hits, err := s.store.Search(queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var results []Result
	for _, hit := range hits {
		if hit.Score < opts.MinScore {
			continue
		}

		results = append(results, Result{
			FileID:      hit.Unit.FileID,
			Symbol:      hit.Unit.Symbol,
			Line:        hit.Unit.Line,
			Description: hit.Unit.Description,
			Language:    hit.Unit.Language,
			Score:       hit.Score,
			Distance:    hit.Distance,
		})
	}

	log.Debug("Search complete", "results", len(results))
	return results, nil
}

// Snippet reads source lines around a result's location for display.
// Any read failure returns an empty snippet; the hit itself stands.
func (s *Searcher) Snippet(result Result, contextLines int) string {
	meta, err := s.store.Meta()
	if err != nil || meta == nil {
		return ""
	}

	path := filepath.Join(meta.RootPath, result.FileID)
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	lines := strings.Split(string(content), "\n")
	start := result.Line - 1
	if start < 0 || start >= len(lines) {
		return ""
	}

	end := start + contextLines + 1
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

// truncate shortens a string for display.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
