package store

import "time"

// EmbeddingProvider identifies which embedding backend produced the
// vectors in an index.
type EmbeddingProvider string

const (
	ProviderOllama EmbeddingProvider = "ollama"
	ProviderOpenAI EmbeddingProvider = "openai"
)

// Meta describes the index: where it was built from and which embedding
// model produced its vectors. There is exactly one Meta per database.
type Meta struct {
	RootPath            string
	EmbeddingProvider   EmbeddingProvider
	EmbeddingModel      string
	EmbeddingDimensions int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UnitInput is a unit ready to be persisted, embedding included.
type UnitInput struct {
	Symbol      string
	Line        int
	Description string
	Embedding   []float32
}

// UnitRecord is a persisted unit row.
type UnitRecord struct {
	ID          int64
	FileID      string // Path relative to the index root
	Fingerprint string
	Symbol      string
	Line        int
	Description string
	Language    string
	IndexedAt   time.Time
}

// ScoredUnit is a search hit with its distance to the query.
type ScoredUnit struct {
	Unit     UnitRecord
	Distance float64
	Score    float64 // 1 - Distance
}

// IndexStats summarizes the index contents.
type IndexStats struct {
	FileCount      int
	UnitCount      int
	LanguageCounts map[string]int
}

// IntegrityReport compares the metadata rows against the vector rows.
// A consistent index has exactly one vector per unit.
type IntegrityReport struct {
	UnitRows       int
	VectorRows     int
	MissingVectors int // units with no vector
	OrphanVectors  int // vectors with no unit
}

// Consistent reports whether units and vectors line up one to one.
func (r IntegrityReport) Consistent() bool {
	return r.MissingVectors == 0 && r.OrphanVectors == 0
}
