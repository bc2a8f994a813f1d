package config

import (
	"os"
	"path/filepath"
)

// Default configuration values
const (
	// Embedding defaults
	DefaultEmbeddingProvider   = "ollama"
	DefaultOllamaURL           = "http://localhost:11434"
	DefaultOllamaEmbedModel    = "nomic-embed-text"
	DefaultOpenAIEmbedModel    = "text-embedding-3-small"
	DefaultEmbedTimeoutSeconds = 60

	// Summarizer defaults
	DefaultSummarizerProvider    = "ollama"
	DefaultOllamaSummaryModel    = "llama3"
	DefaultOpenAISummaryModel    = "gpt-4o-mini"
	DefaultAnthropicModel        = "claude-3-haiku-20240307"
	DefaultSummaryTimeoutSeconds = 120

	// Indexing defaults
	DefaultMaxFileSize  = 1 << 20 // 1MB
	DefaultMaxFileCount = 10000

	// Database
	DefaultDBFileName = "index.db"
)

// DefaultIgnorePatterns returns the default list of file patterns to ignore.
func DefaultIgnorePatterns() []string {
	return []string{
		// Lock files
		"*.lock",
		"package-lock.json",
		"yarn.lock",
		"pnpm-lock.yaml",
		"Cargo.lock",
		"go.sum",
		"poetry.lock",
		"Gemfile.lock",

		// Build outputs
		"dist/",
		"build/",
		"out/",
		"target/",
		"__pycache__/",
		"*.pyc",
		".next/",
		".nuxt/",

		// Dependencies
		"node_modules/",
		"vendor/",
		".venv/",
		"venv/",

		// IDE/Editor
		".idea/",
		".vscode/",
		"*.swp",
		"*.swo",
		"*~",

		// Version control
		".git/",
		".svn/",
		".hg/",

		// Binary/compiled
		"*.exe",
		"*.dll",
		"*.so",
		"*.dylib",
		"*.o",
		"*.a",
		"*.class",

		// Minified/generated
		"*.min.js",
		"*.min.css",
		"*.map",

		// Misc
		".DS_Store",
		"Thumbs.db",
		".env",
		".env.*",
		"*.log",
	}
}

// DefaultConfigDir returns the default configuration directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/codescout"
	}
	return filepath.Join(home, ".config", "codescout")
}

// DefaultDataDir returns the default data directory path.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share/codescout"
	}
	return filepath.Join(home, ".local", "share", "codescout")
}

// DefaultDatabasePath returns the default database file path.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultDataDir(), DefaultDBFileName)
}
