package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.NotNil(t, c)

	// Embeddings defaults
	assert.Equal(t, DefaultEmbeddingProvider, c.Embeddings.Provider)
	assert.Equal(t, DefaultOllamaURL, c.Embeddings.Ollama.URL)
	assert.Equal(t, DefaultOllamaEmbedModel, c.Embeddings.Ollama.Model)
	assert.Equal(t, DefaultOpenAIEmbedModel, c.Embeddings.OpenAI.Model)
	assert.Equal(t, DefaultEmbedTimeoutSeconds, c.Embeddings.TimeoutSeconds)

	// Summarizer defaults
	assert.Equal(t, DefaultSummarizerProvider, c.Summarizer.Provider)
	assert.Equal(t, DefaultOllamaSummaryModel, c.Summarizer.Ollama.Model)
	assert.Equal(t, DefaultOpenAISummaryModel, c.Summarizer.OpenAI.Model)
	assert.Equal(t, DefaultAnthropicModel, c.Summarizer.Anthropic.Model)
	assert.Equal(t, DefaultSummaryTimeoutSeconds, c.Summarizer.TimeoutSeconds)

	// Indexing defaults
	assert.Equal(t, DefaultMaxFileSize, c.Indexing.MaxFileSize)
	assert.Equal(t, DefaultMaxFileCount, c.Indexing.MaxFileCount)

	// Ignore patterns
	assert.NotEmpty(t, c.Ignore)
	assert.Contains(t, c.Ignore, "node_modules/")
	assert.Contains(t, c.Ignore, ".git/")
}

func TestDefaultPaths(t *testing.T) {
	configDir := DefaultConfigDir()
	dataDir := DefaultDataDir()
	dbPath := DefaultDatabasePath()

	assert.NotEmpty(t, configDir)
	assert.NotEmpty(t, dataDir)
	assert.NotEmpty(t, dbPath)

	assert.Contains(t, configDir, "codescout")
	assert.Contains(t, dataDir, "codescout")
	assert.Contains(t, dbPath, "index.db")
}

func TestLoadWithConfigFile(t *testing.T) {
	// Reset viper and global config
	viper.Reset()
	cfg = nil

	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
embeddings:
  provider: openai
  ollama:
    url: http://custom:11434
    model: custom-model
  openai:
    model: text-embedding-3-large
    base_url: https://custom-api.example.com
summarizer:
  provider: anthropic
  timeout_seconds: 30
  anthropic:
    model: claude-3-opus-20240229
database:
  path: /custom/path/index.db
indexing:
  max_file_size: 2097152
ignore:
  - "custom-ignore/"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load the config
	err = Load(configPath)
	require.NoError(t, err)

	loadedCfg := Get()

	// Verify loaded values
	assert.Equal(t, "openai", loadedCfg.Embeddings.Provider)
	assert.Equal(t, "http://custom:11434", loadedCfg.Embeddings.Ollama.URL)
	assert.Equal(t, "custom-model", loadedCfg.Embeddings.Ollama.Model)
	assert.Equal(t, "text-embedding-3-large", loadedCfg.Embeddings.OpenAI.Model)
	assert.Equal(t, "https://custom-api.example.com", loadedCfg.Embeddings.OpenAI.BaseURL)
	assert.Equal(t, "anthropic", loadedCfg.Summarizer.Provider)
	assert.Equal(t, 30, loadedCfg.Summarizer.TimeoutSeconds)
	assert.Equal(t, "claude-3-opus-20240229", loadedCfg.Summarizer.Anthropic.Model)
	assert.Equal(t, "/custom/path/index.db", loadedCfg.Database.Path)
	assert.Equal(t, 2097152, loadedCfg.Indexing.MaxFileSize)
	assert.Contains(t, loadedCfg.Ignore, "custom-ignore/")
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	// Reset viper and global config
	viper.Reset()
	cfg = nil

	t.Setenv("CODESCOUT_EMBEDDINGS_PROVIDER", "openai")
	t.Setenv("CODESCOUT_SUMMARIZER_PROVIDER", "anthropic")
	t.Setenv("OPENAI_API_KEY", "test-api-key")
	t.Setenv("ANTHROPIC_API_KEY", "test-anthropic-key")

	err := Load("")
	require.NoError(t, err)

	loadedCfg := Get()

	assert.Equal(t, "openai", loadedCfg.Embeddings.Provider)
	assert.Equal(t, "anthropic", loadedCfg.Summarizer.Provider)
	assert.Equal(t, "test-api-key", loadedCfg.Embeddings.OpenAI.APIKey)
	assert.Equal(t, "test-api-key", loadedCfg.Summarizer.OpenAI.APIKey)
	assert.Equal(t, "test-anthropic-key", loadedCfg.Summarizer.Anthropic.APIKey)
}

func TestLoadMissingConfigFile(t *testing.T) {
	viper.Reset()
	cfg = nil

	// Load with no config file - should not error, just use defaults
	err := Load("")
	require.NoError(t, err)

	loadedCfg := Get()

	assert.Equal(t, DefaultEmbeddingProvider, loadedCfg.Embeddings.Provider)
	assert.Equal(t, DefaultSummarizerProvider, loadedCfg.Summarizer.Provider)
}

func TestGet(t *testing.T) {
	cfg = nil

	// First call should return default config
	c1 := Get()
	assert.NotNil(t, c1)

	// Subsequent call should return same instance
	c2 := Get()
	assert.Same(t, c1, c2)
}

func TestGlobalConfigPath(t *testing.T) {
	path := GlobalConfigPath()
	assert.Contains(t, path, "codescout")
	assert.Contains(t, path, "config.yaml")
}
