package store

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Register sqlite-vec extension
	sqlite_vec.Auto()
}

// ErrDimensionMismatch is returned when an embedding's dimensions do not
// match the dimensions the index was created with.
var ErrDimensionMismatch = errors.New("embedding dimensions do not match index")

// ErrModelMismatch is returned when the configured embedding provider or
// model differs from the one the index was created with.
var ErrModelMismatch = errors.New("embedding model does not match index")

// SQLiteStore implements the Store interface using SQLite and sqlite-vec.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite store at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with foreign keys enabled
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize schema
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("Opened SQLite store", "path", dbPath)

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureMeta records the index metadata on first use and validates it on
// every use after.
func (s *SQLiteStore) EnsureMeta(rootPath string, provider EmbeddingProvider, model string, dimensions int) (*Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readMeta()
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.EmbeddingProvider != provider || existing.EmbeddingModel != model {
			return nil, fmt.Errorf("index was built with %s/%s, configured %s/%s: %w",
				existing.EmbeddingProvider, existing.EmbeddingModel, provider, model, ErrModelMismatch)
		}
		if existing.EmbeddingDimensions != dimensions {
			return nil, fmt.Errorf("index has %d dimensions, configured %d: %w",
				existing.EmbeddingDimensions, dimensions, ErrDimensionMismatch)
		}
		return existing, nil
	}

	// First use: create the vector table now that dimensions are known
	if err := createVectorTable(s.db, dimensions); err != nil {
		return nil, fmt.Errorf("failed to create vector table: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`
		INSERT INTO index_meta (id, root_path, embedding_provider, embedding_model, embedding_dimensions, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`, rootPath, string(provider), model, dimensions, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record index metadata: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, now)
	return &Meta{
		RootPath:            rootPath,
		EmbeddingProvider:   provider,
		EmbeddingModel:      model,
		EmbeddingDimensions: dimensions,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}, nil
}

// Meta returns the index metadata, or nil if the index is untouched.
func (s *SQLiteStore) Meta() (*Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMeta()
}

// readMeta reads the singleton metadata row. Callers hold the lock.
func (s *SQLiteStore) readMeta() (*Meta, error) {
	var meta Meta
	var provider, createdAt, updatedAt string

	err := s.db.QueryRow(`
		SELECT root_path, embedding_provider, embedding_model, embedding_dimensions, created_at, updated_at
		FROM index_meta WHERE id = 1
	`).Scan(&meta.RootPath, &provider, &meta.EmbeddingModel, &meta.EmbeddingDimensions, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}

	meta.EmbeddingProvider = EmbeddingProvider(provider)
	meta.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	meta.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &meta, nil
}

// touchMeta updates the metadata timestamp. Callers hold the lock.
func (s *SQLiteStore) touchMeta() {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec("UPDATE index_meta SET updated_at = ? WHERE id = 1", now); err != nil {
		log.Debug("Failed to update index timestamp", "error", err)
	}
}

// ListFileIDs returns the distinct file IDs present in the index.
func (s *SQLiteStore) ListFileIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT DISTINCT file_id FROM units ORDER BY file_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan file ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// HasFile reports whether any units exist for the file.
func (s *SQLiteStore) HasFile(fileID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow("SELECT 1 FROM units WHERE file_id = ? LIMIT 1", fileID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file: %w", err)
	}
	return true, nil
}

// HasFingerprint reports whether any unit row carries the fingerprint.
// The check is index-wide, so a file whose content matches content
// already indexed under another path is recognized as unchanged.
func (s *SQLiteStore) HasFingerprint(fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow("SELECT 1 FROM units WHERE fingerprint = ? LIMIT 1", fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return true, nil
}

// ListFileUnits returns the units recorded for a file, ordered by line.
func (s *SQLiteStore) ListFileUnits(fileID string) ([]UnitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, file_id, fingerprint, symbol, line, description, language, indexed_at
		FROM units WHERE file_id = ? ORDER BY line
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	return scanUnits(rows)
}

// ReplaceFileUnits atomically replaces a file's unit cohort. The old
// rows and vectors are deleted and the new ones inserted inside a single
// transaction, so readers never observe a partially updated file.
func (s *SQLiteStore) ReplaceFileUnits(fileID, fingerprint, language string, units []UnitInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete vectors for the file's old units, then the rows
	_, err = tx.Exec("DELETE FROM unit_vectors WHERE unit_id IN (SELECT id FROM units WHERE file_id = ?)", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete old vectors: %w", err)
	}

	_, err = tx.Exec("DELETE FROM units WHERE file_id = ?", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete old units: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, unit := range units {
		result, err := tx.Exec(`
			INSERT INTO units (file_id, fingerprint, symbol, line, description, language, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, fileID, fingerprint, unit.Symbol, unit.Line, unit.Description, language, now)
		if err != nil {
			return fmt.Errorf("failed to insert unit %d: %w", i, err)
		}

		unitID, _ := result.LastInsertId()

		embeddingBlob := serializeEmbedding(unit.Embedding)
		_, err = tx.Exec(`
			INSERT INTO unit_vectors (unit_id, embedding)
			VALUES (?, ?)
		`, unitID, embeddingBlob)
		if err != nil {
			return fmt.Errorf("failed to insert vector for unit %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.touchMeta()
	return nil
}

// DeleteFileUnits removes all units and vectors for a file.
func (s *SQLiteStore) DeleteFileUnits(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM unit_vectors WHERE unit_id IN (SELECT id FROM units WHERE file_id = ?)", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}

	_, err = tx.Exec("DELETE FROM units WHERE file_id = ?", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete units: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.touchMeta()
	return nil
}

// Search performs a vector similarity search over all units.
func (s *SQLiteStore) Search(queryEmbedding []float32, topK int) ([]ScoredUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// An index that has never been written to has no vector table
	exists, err := vectorTableExists(s.db)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	queryBlob := serializeEmbedding(queryEmbedding)

	rows, err := s.db.Query(`
		SELECT
			u.id, u.file_id, u.fingerprint, u.symbol, u.line, u.description, u.language, u.indexed_at,
			uv.distance
		FROM unit_vectors uv
		JOIN units u ON u.id = uv.unit_id
		WHERE uv.embedding MATCH ?
			AND k = ?
		ORDER BY uv.distance ASC
	`, queryBlob, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var results []ScoredUnit
	for rows.Next() {
		var result ScoredUnit
		var indexedAt string

		if err := rows.Scan(
			&result.Unit.ID, &result.Unit.FileID, &result.Unit.Fingerprint,
			&result.Unit.Symbol, &result.Unit.Line, &result.Unit.Description,
			&result.Unit.Language, &indexedAt,
			&result.Distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		result.Unit.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		result.Score = 1 - result.Distance // Convert distance to similarity

		results = append(results, result)
	}

	return results, rows.Err()
}

// Stats summarizes the index contents.
func (s *SQLiteStore) Stats() (*IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &IndexStats{
		LanguageCounts: make(map[string]int),
	}

	err := s.db.QueryRow("SELECT COUNT(DISTINCT file_id), COUNT(*) FROM units").Scan(&stats.FileCount, &stats.UnitCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}

	rows, err := s.db.Query("SELECT language, COUNT(*) FROM units GROUP BY language")
	if err != nil {
		return nil, fmt.Errorf("failed to count languages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lang string
		var count int
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, fmt.Errorf("failed to scan language count: %w", err)
		}
		stats.LanguageCounts[lang] = count
	}

	return stats, rows.Err()
}

// VerifyIntegrity cross-checks unit rows against vector rows.
func (s *SQLiteStore) VerifyIntegrity() (*IntegrityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := &IntegrityReport{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM units").Scan(&report.UnitRows); err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}

	exists, err := vectorTableExists(s.db)
	if err != nil {
		return nil, err
	}
	if !exists {
		report.MissingVectors = report.UnitRows
		return report, nil
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM unit_vectors").Scan(&report.VectorRows); err != nil {
		return nil, fmt.Errorf("failed to count vectors: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM units u
		WHERE NOT EXISTS (SELECT 1 FROM unit_vectors uv WHERE uv.unit_id = u.id)
	`).Scan(&report.MissingVectors)
	if err != nil {
		return nil, fmt.Errorf("failed to count missing vectors: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM unit_vectors uv
		WHERE NOT EXISTS (SELECT 1 FROM units u WHERE u.id = uv.unit_id)
	`).Scan(&report.OrphanVectors)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphan vectors: %w", err)
	}

	return report, nil
}

// serializeEmbedding converts a float32 slice to bytes for sqlite-vec.
func serializeEmbedding(embedding []float32) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// scanUnits reads unit rows into records.
func scanUnits(rows *sql.Rows) ([]UnitRecord, error) {
	var units []UnitRecord
	for rows.Next() {
		var unit UnitRecord
		var indexedAt string

		if err := rows.Scan(
			&unit.ID, &unit.FileID, &unit.Fingerprint,
			&unit.Symbol, &unit.Line, &unit.Description,
			&unit.Language, &indexedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}

		unit.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		units = append(units, unit)
	}

	return units, rows.Err()
}
