// Package store persists indexed units and their embeddings in SQLite,
// with vector search provided by the sqlite-vec extension.
package store

// Store is the persistence interface for the unit index.
type Store interface {
	// EnsureMeta records the index metadata on first use and validates it
	// on every use after. A mismatch against the recorded embedding
	// configuration is fatal; re-indexing with a different model requires
	// a new database.
	EnsureMeta(rootPath string, provider EmbeddingProvider, model string, dimensions int) (*Meta, error)

	// Meta returns the index metadata, or nil if the index has never been
	// written to.
	Meta() (*Meta, error)

	// ListFileIDs returns the distinct file IDs present in the index.
	ListFileIDs() ([]string, error)

	// HasFile reports whether any units exist for the file.
	HasFile(fileID string) (bool, error)

	// HasFingerprint reports whether any unit row carries the fingerprint,
	// regardless of which file it belongs to.
	HasFingerprint(fingerprint string) (bool, error)

	// ListFileUnits returns the units recorded for a file, ordered by line.
	ListFileUnits(fileID string) ([]UnitRecord, error)

	// ReplaceFileUnits atomically replaces a file's unit cohort: old rows
	// and vectors are deleted and the new ones inserted in one transaction.
	ReplaceFileUnits(fileID, fingerprint, language string, units []UnitInput) error

	// DeleteFileUnits removes all units and vectors for a file.
	DeleteFileUnits(fileID string) error

	// Search returns the topK nearest units to the query embedding,
	// ordered by ascending distance. An empty index yields no results.
	Search(queryEmbedding []float32, topK int) ([]ScoredUnit, error)

	// Stats summarizes the index contents.
	Stats() (*IndexStats, error)

	// VerifyIntegrity cross-checks unit rows against vector rows.
	VerifyIntegrity() (*IntegrityReport, error)

	// Close closes the underlying database.
	Close() error
}
