package embed

import (
	"fmt"
	"time"

	rperrors "github.com/repocks/repocks/internal/errors"
)

// FactoryConfig selects and configures an embedding provider.
type FactoryConfig struct {
	// Provider is "ollama" (default) or "static".
	Provider string

	// Host, Model, Dimensions, BatchSize, Timeout configure the Ollama provider.
	Host       string
	Model      string
	Dimensions int
	BatchSize  int
	Timeout    time.Duration

	// CacheSize is the LRU embedding cache capacity; 0 uses the default.
	CacheSize int
}

// New creates an embedder for the given configuration, wrapped in an LRU cache.
func New(cfg FactoryConfig) (Embedder, error) {
	var inner Embedder

	switch cfg.Provider {
	case "", "ollama":
		inner = NewOllamaEmbedder(OllamaConfig{
			Host:       cfg.Host,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
			Timeout:    cfg.Timeout,
		})
	case "static":
		inner = NewStaticEmbedder(cfg.Dimensions)
	default:
		return nil, rperrors.ConfigError(
			fmt.Sprintf("unknown embeddings provider %q (use: ollama, static)", cfg.Provider), nil)
	}

	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
