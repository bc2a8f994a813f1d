// Package config handles configuration loading and validation for codescout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config represents the complete codescout configuration.
type Config struct {
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Indexing   IndexingConfig   `mapstructure:"indexing"`
	Ignore     []string         `mapstructure:"ignore"`
}

// EmbeddingsConfig configures the embedding service.
type EmbeddingsConfig struct {
	Provider       string            `mapstructure:"provider"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	Ollama         OllamaEmbedConfig `mapstructure:"ollama"`
	OpenAI         OpenAIEmbedConfig `mapstructure:"openai"`
}

// OllamaEmbedConfig configures Ollama embeddings.
type OllamaEmbedConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// OpenAIEmbedConfig configures OpenAI embeddings.
type OpenAIEmbedConfig struct {
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
}

// SummarizerConfig configures the LLM summarizer service.
type SummarizerConfig struct {
	Provider       string          `mapstructure:"provider"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Ollama         OllamaLLMConfig `mapstructure:"ollama"`
	OpenAI         OpenAILLMConfig `mapstructure:"openai"`
	Anthropic      AnthropicConfig `mapstructure:"anthropic"`
}

// OllamaLLMConfig configures the Ollama summarizer.
type OllamaLLMConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// OpenAILLMConfig configures the OpenAI summarizer.
type OpenAILLMConfig struct {
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// AnthropicConfig configures the Anthropic summarizer.
type AnthropicConfig struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// IndexingConfig configures the synchronization process.
type IndexingConfig struct {
	MaxFileSize  int `mapstructure:"max_file_size"`
	MaxFileCount int `mapstructure:"max_file_count"`
}

// Global configuration instance
var cfg *Config

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Provider:       DefaultEmbeddingProvider,
			TimeoutSeconds: DefaultEmbedTimeoutSeconds,
			Ollama: OllamaEmbedConfig{
				URL:   DefaultOllamaURL,
				Model: DefaultOllamaEmbedModel,
			},
			OpenAI: OpenAIEmbedConfig{
				Model: DefaultOpenAIEmbedModel,
			},
		},
		Summarizer: SummarizerConfig{
			Provider:       DefaultSummarizerProvider,
			TimeoutSeconds: DefaultSummaryTimeoutSeconds,
			Ollama: OllamaLLMConfig{
				URL:   DefaultOllamaURL,
				Model: DefaultOllamaSummaryModel,
			},
			OpenAI: OpenAILLMConfig{
				Model: DefaultOpenAISummaryModel,
			},
			Anthropic: AnthropicConfig{
				Model: DefaultAnthropicModel,
			},
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath(),
		},
		Indexing: IndexingConfig{
			MaxFileSize:  DefaultMaxFileSize,
			MaxFileCount: DefaultMaxFileCount,
		},
		Ignore: DefaultIgnorePatterns(),
	}
}

// Load reads configuration from file and environment variables.
func Load(configFile string) error {
	// Set defaults
	setDefaults()

	// Set config file if specified
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(DefaultConfigDir())
		viper.AddConfigPath(".")

		// Also check for .codescoutrc.yaml in current directory and parents
		if rcPath := findRCFile(); rcPath != "" {
			viper.SetConfigFile(rcPath)
		}
	}

	// Environment variables
	viper.SetEnvPrefix("CODESCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Debug("Loaded config from", "file", viper.ConfigFileUsed())
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	// Load API keys from environment if not in config
	loadAPIKeysFromEnv()

	return nil
}

// setDefaults sets default values in viper.
func setDefaults() {
	// Embeddings
	viper.SetDefault("embeddings.provider", DefaultEmbeddingProvider)
	viper.SetDefault("embeddings.timeout_seconds", DefaultEmbedTimeoutSeconds)
	viper.SetDefault("embeddings.ollama.url", DefaultOllamaURL)
	viper.SetDefault("embeddings.ollama.model", DefaultOllamaEmbedModel)
	viper.SetDefault("embeddings.openai.model", DefaultOpenAIEmbedModel)

	// Summarizer
	viper.SetDefault("summarizer.provider", DefaultSummarizerProvider)
	viper.SetDefault("summarizer.timeout_seconds", DefaultSummaryTimeoutSeconds)
	viper.SetDefault("summarizer.ollama.url", DefaultOllamaURL)
	viper.SetDefault("summarizer.ollama.model", DefaultOllamaSummaryModel)
	viper.SetDefault("summarizer.openai.model", DefaultOpenAISummaryModel)
	viper.SetDefault("summarizer.anthropic.model", DefaultAnthropicModel)

	// Database
	viper.SetDefault("database.path", DefaultDatabasePath())

	// Indexing
	viper.SetDefault("indexing.max_file_size", DefaultMaxFileSize)
	viper.SetDefault("indexing.max_file_count", DefaultMaxFileCount)

	// Ignore patterns
	viper.SetDefault("ignore", DefaultIgnorePatterns())
}

// findRCFile searches for .codescoutrc.yaml starting from current directory.
func findRCFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		rcPath := filepath.Join(dir, ".codescoutrc.yaml")
		if _, err := os.Stat(rcPath); err == nil {
			return rcPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// loadAPIKeysFromEnv loads API keys from environment variables if not already set.
func loadAPIKeysFromEnv() {
	// OpenAI API key
	if cfg.Embeddings.OpenAI.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Embeddings.OpenAI.APIKey = key
		}
	}
	if cfg.Summarizer.OpenAI.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Summarizer.OpenAI.APIKey = key
		}
	}

	// Anthropic API key
	if cfg.Summarizer.Anthropic.APIKey == "" {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			cfg.Summarizer.Anthropic.APIKey = key
		}
	}
}

// ConfigFilePath returns the path of the loaded config file, or empty string if none.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
