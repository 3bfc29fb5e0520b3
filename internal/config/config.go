// Package config loads and validates the repocks configuration.
//
// Configuration is read from repocks.yaml in the working directory, with
// environment variables (REPOCKS_*) taking precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	rperrors "github.com/repocks/repocks/internal/errors"
)

// ConfigFileName is the per-project configuration file name.
const ConfigFileName = "repocks.yaml"

// DataDirName is the dotfile directory holding the collection and lock files.
const DataDirName = ".repocks"

// Duration wraps time.Duration so YAML can use human-readable values
// like "60s" and "500ms".
type Duration time.Duration

// MarshalYAML renders the duration in its human-readable form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts either a duration string or integer nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value at line %d", value.Line)
	}
	*d = Duration(n)
	return nil
}

// Config represents the complete repocks configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Targets    []string         `yaml:"targets"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Query      QueryConfig      `yaml:"query"`
	Server     ServerConfig     `yaml:"server"`
	Watch      WatchConfig      `yaml:"watch"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "ollama" (default) or "static".
	Provider string `yaml:"provider"`
	// Host is the Ollama API endpoint (default: http://localhost:11434).
	Host string `yaml:"host"`
	// Model is the embedding model name (default: mxbai-embed-large).
	Model string `yaml:"model"`
	// Dimensions is the fixed collection embedding dimension (default: 1024).
	Dimensions int `yaml:"dimensions"`
	// BatchSize is the maximum texts per provider request (default: 32).
	BatchSize int `yaml:"batch_size"`
	// Timeout is the per-request timeout (default: 60s).
	Timeout Duration `yaml:"timeout"`
	// CacheSize is the embedding LRU cache capacity (default: 1000).
	CacheSize int `yaml:"cache_size"`
}

// QueryConfig configures similarity queries.
type QueryConfig struct {
	// TopK is the default number of results to return (default: 10).
	TopK int `yaml:"top_k"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	LogLevel string `yaml:"log_level"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce is the window for coalescing filesystem events (default: 500ms).
	Debounce Duration `yaml:"debounce"`
}

// defaultTargets mirror the original document locations: a personal notes
// directory plus the project docs tree.
var defaultTargets = []string{
	"~/.repocks/**/*.md",
	"./docs/**/*.md",
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Targets: append([]string(nil), defaultTargets...),
		Embeddings: EmbeddingsConfig{
			Provider:   "ollama",
			Host:       "http://localhost:11434",
			Model:      "mxbai-embed-large",
			Dimensions: 1024,
			BatchSize:  32,
			Timeout:    Duration(60 * time.Second),
			CacheSize:  1000,
		},
		Query: QueryConfig{
			TopK: 10,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
		Watch: WatchConfig{
			Debounce: Duration(500 * time.Millisecond),
		},
	}
}

// Load reads the configuration for the given working directory.
// A missing config file is not an error; defaults are returned.
// Environment variables override file values.
func Load(workdir string) (*Config, error) {
	cfg := NewConfig()

	path := filepath.Join(workdir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, rperrors.New(rperrors.ErrCodeConfigNotFound,
				fmt.Sprintf("cannot read %s", path), err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, rperrors.ConfigError(fmt.Sprintf("cannot parse %s", path), err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to repocks.yaml in the given directory.
func (c *Config) Save(workdir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return rperrors.ConfigError("cannot marshal config", err)
	}

	path := filepath.Join(workdir, ConfigFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rperrors.ConfigError(fmt.Sprintf("cannot write %s", path), err)
	}
	return nil
}

// applyEnvOverrides applies REPOCKS_* environment variables on top of file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REPOCKS_OLLAMA_HOST"); v != "" {
		c.Embeddings.Host = v
	}
	if v := os.Getenv("REPOCKS_EMBEDDING_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("REPOCKS_EMBEDDING_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("REPOCKS_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.Dimensions = n
		}
	}
	if v := os.Getenv("REPOCKS_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Query.TopK = n
		}
	}
	if v := os.Getenv("REPOCKS_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Embeddings.Provider {
	case "ollama", "static":
	default:
		return rperrors.ConfigError(
			fmt.Sprintf("unknown embeddings provider %q (use: ollama, static)", c.Embeddings.Provider), nil)
	}

	if c.Embeddings.Dimensions <= 0 {
		return rperrors.ConfigError(
			fmt.Sprintf("embeddings dimensions must be positive, got %d", c.Embeddings.Dimensions), nil)
	}
	if c.Embeddings.BatchSize <= 0 {
		return rperrors.ConfigError(
			fmt.Sprintf("embeddings batch_size must be positive, got %d", c.Embeddings.BatchSize), nil)
	}
	if c.Query.TopK < 0 {
		return rperrors.ConfigError(
			fmt.Sprintf("query top_k must not be negative, got %d", c.Query.TopK), nil)
	}
	return nil
}

// DataDir returns the data directory for the given working directory.
func DataDir(workdir string) string {
	return filepath.Join(workdir, DataDirName)
}

// StorePath returns the collection file path for the given working directory.
func StorePath(workdir string) string {
	return filepath.Join(DataDir(workdir), "store.db")
}

// LockPath returns the sidecar lock file path for the given working directory.
// The lock file is distinct from the data file so SQLite's own locking is
// not interfered with.
func LockPath(workdir string) string {
	return filepath.Join(DataDir(workdir), "store.lock")
}
