package store

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

const currentSchemaVersion = 1

// Schema definitions
const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

const indexMetaTable = `
CREATE TABLE IF NOT EXISTS index_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	root_path TEXT NOT NULL,
	embedding_provider TEXT NOT NULL,
	embedding_model TEXT NOT NULL,
	embedding_dimensions INTEGER NOT NULL,
	created_at TEXT DEFAULT (datetime('now')),
	updated_at TEXT DEFAULT (datetime('now'))
);
`

const unitsTable = `
CREATE TABLE IF NOT EXISTS units (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	symbol TEXT NOT NULL,
	line INTEGER NOT NULL,
	description TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	indexed_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_units_file_id ON units(file_id);
CREATE INDEX IF NOT EXISTS idx_units_fingerprint ON units(fingerprint);
`

// createVectorTable creates the sqlite-vec virtual table for the given dimensions.
func createVectorTable(db *sql.DB, dimensions int) error {
	query := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS unit_vectors USING vec0(
			unit_id INTEGER PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, dimensions)

	_, err := db.Exec(query)
	return err
}

// vectorTableExists reports whether the vector table has been created.
func vectorTableExists(db *sql.DB) (bool, error) {
	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='unit_vectors'
	`).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check vector table: %w", err)
	}
	return true, nil
}

// initSchema initializes the database schema.
func initSchema(db *sql.DB) error {
	// Create schema version table
	if _, err := db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Check current version
	var version int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		version = 0
	} else if err != nil {
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		log.Debug("Schema is up to date", "version", version)
		return nil
	}

	log.Debug("Migrating schema", "from", version, "to", currentSchemaVersion)

	// Apply migrations
	if version < 1 {
		if err := migrateV1(db); err != nil {
			return fmt.Errorf("failed to migrate to v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func migrateV1(db *sql.DB) error {
	log.Debug("Applying migration v1")

	tables := []string{indexMetaTable, unitsTable}
	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// The vector table is created once the embedding dimensions are known,
	// when EnsureMeta records the index metadata.

	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", 1); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return nil
}
