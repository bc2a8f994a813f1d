package cli

import (
	"fmt"

	"codescout/internal/config"
	"codescout/internal/embeddings"
	"codescout/internal/store"
)

// openStore opens the configured index database.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return st, nil
}

// newEmbedder creates the embedding service. When the index already has
// metadata the service is pinned to the recorded provider and model so
// query vectors stay comparable with stored ones.
func newEmbedder(st store.Store, cfg *config.Config) (embeddings.Service, error) {
	meta, err := st.Meta()
	if err != nil {
		return nil, err
	}
	if meta != nil {
		return embeddings.NewServiceForIndex(string(meta.EmbeddingProvider), meta.EmbeddingModel, cfg)
	}
	return embeddings.NewService(cfg)
}
