package index

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/repocks/repocks/internal/embed"
	rperrors "github.com/repocks/repocks/internal/errors"
	"github.com/repocks/repocks/internal/scanner"
	"github.com/repocks/repocks/internal/store"
)

// DefaultReadConcurrency bounds concurrent file reads during a sync pass.
const DefaultReadConcurrency = 8

// OrchestratorConfig contains configuration for the Orchestrator.
type OrchestratorConfig struct {
	// Targets are the glob patterns defining which files to index.
	Targets []string

	// Workdir anchors relative target patterns.
	Workdir string

	// StorePath is the collection file location.
	StorePath string

	// LockPath is the sidecar lock file location.
	LockPath string

	// Dimensions is the collection's fixed embedding dimension.
	Dimensions int

	// Embedder produces vectors for document content.
	Embedder embed.Embedder

	// ReadConcurrency bounds concurrent file reads (optional).
	// Defaults to DefaultReadConcurrency if zero.
	ReadConcurrency int
}

// Result summarizes a completed sync pass.
type Result struct {
	// UpsertCount is the number of documents written.
	UpsertCount int

	// DeleteCount is the number of stale documents removed.
	DeleteCount int

	// Duration is the wall time of the pass.
	Duration time.Duration
}

// Orchestrator runs sync passes that bring the collection in line with the
// files currently matching the configured targets. At most one pass runs at
// a time per Orchestrator; cross-process exclusion comes from the collection
// lock held for the duration of each pass.
type Orchestrator struct {
	config OrchestratorConfig
	mu     sync.Mutex
}

// NewOrchestrator creates a new sync orchestrator.
func NewOrchestrator(config OrchestratorConfig) *Orchestrator {
	return &Orchestrator{config: config}
}

func (o *Orchestrator) readConcurrency() int {
	if o.config.ReadConcurrency > 0 {
		return o.config.ReadConcurrency
	}
	return DefaultReadConcurrency
}

// Sync runs one full pass: resolve targets, diff against the collection,
// apply deletions, then read, embed, and upsert every target file.
//
// Deletions are applied before upserts. A file that vanishes or becomes
// unreadable between globbing and reading aborts the pass, as does an
// embedding failure; deletions already applied are not rolled back, and the
// next pass re-converges from the new on-disk state.
func (o *Orchestrator) Sync(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()

	files, err := scanner.ResolveTargets(o.config.Targets, o.config.Workdir)
	if err != nil {
		return nil, err
	}

	session, err := store.Open(ctx, store.Options{
		Path:       o.config.StorePath,
		LockPath:   o.config.LockPath,
		Dimensions: o.config.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	storedIDs, err := session.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	diff := Reconcile(files, storedIDs)

	slog.Info("sync_pass_started",
		slog.Int("targets", len(files)),
		slog.Int("stored", len(storedIDs)),
		slog.Int("deletes", len(diff.Deletes)))

	if err := session.Delete(ctx, diff.Deletes); err != nil {
		return nil, err
	}

	docs, err := o.buildDocuments(ctx, diff.Upserts)
	if err != nil {
		return nil, err
	}

	if err := session.Upsert(ctx, docs); err != nil {
		return nil, err
	}

	result := &Result{
		UpsertCount: len(docs),
		DeleteCount: len(diff.Deletes),
		Duration:    time.Since(start),
	}

	slog.Info("sync_pass_completed",
		slog.Int("upserted", result.UpsertCount),
		slog.Int("deleted", result.DeleteCount),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// buildDocuments reads every target file and embeds the contents in one
// batch call. Read order is preserved so embeddings line up with paths.
func (o *Orchestrator) buildDocuments(ctx context.Context, paths []string) ([]store.Document, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	contents := make([]string, len(paths))
	modified := make([]time.Time, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.readConcurrency())

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			info, err := os.Stat(path)
			if err != nil {
				return rperrors.SourceReadError(path, err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return rperrors.SourceReadError(path, err)
			}

			contents[i] = string(data)
			modified[i] = info.ModTime().UTC()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vectors, err := o.config.Embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(paths) {
		return nil, rperrors.EmbeddingError("embedding count does not match document count", nil)
	}

	indexedAt := time.Now().UTC().Format(time.RFC3339)

	docs := make([]store.Document, len(paths))
	for i, path := range paths {
		docs[i] = store.Document{
			ID:        path,
			Content:   contents[i],
			Embedding: vectors[i],
			Metadata: map[string]any{
				"file_path":   path,
				"indexed_at":  indexedAt,
				"modified_at": modified[i].Format(time.RFC3339),
				"bytes":       len(contents[i]),
			},
		}
	}

	return docs, nil
}
