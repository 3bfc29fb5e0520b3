// Package search answers similarity queries against the collection.
package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/repocks/repocks/internal/embed"
	rperrors "github.com/repocks/repocks/internal/errors"
	"github.com/repocks/repocks/internal/store"
)

// Config contains configuration for the query service.
type Config struct {
	// StorePath is the collection file location.
	StorePath string

	// LockPath is the sidecar lock file location.
	LockPath string

	// Dimensions is the collection's fixed embedding dimension.
	Dimensions int

	// Embedder produces the query vector.
	Embedder embed.Embedder

	// TopK is the default result count when a query does not specify one.
	TopK int
}

// Service embeds query text and runs similarity search over the collection.
// Each query holds the collection lock only for the duration of the search.
type Service struct {
	config Config
}

// NewService creates a new query service.
func NewService(config Config) *Service {
	return &Service{config: config}
}

func (s *Service) topK(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.config.TopK > 0 {
		return s.config.TopK
	}
	return store.DefaultTopK
}

// Query embeds the question and returns the top-K most similar documents,
// ordered by descending score. An empty or unembedded collection yields an
// empty result, not an error. topK <= 0 falls back to the configured default.
func (s *Service) Query(ctx context.Context, text string, topK int) ([]store.QueryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, rperrors.New(rperrors.ErrCodeQueryEmpty, "query text is empty", nil)
	}

	start := time.Now()

	vector, err := s.config.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	session, err := store.Open(ctx, store.Options{
		Path:       s.config.StorePath,
		LockPath:   s.config.LockPath,
		Dimensions: s.config.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	results, err := session.Query(ctx, vector, s.topK(topK))
	if err != nil {
		return nil, err
	}

	slog.Debug("query_completed",
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}
