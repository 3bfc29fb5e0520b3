package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repocks/repocks/internal/embed"
	rperrors "github.com/repocks/repocks/internal/errors"
	"github.com/repocks/repocks/internal/store"
)

const testDims = 32

type syncFixture struct {
	orchestrator *Orchestrator
	docsDir      string
	storePath    string
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	root := t.TempDir()
	docsDir := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))

	storePath := filepath.Join(root, ".repocks", "store.db")
	return &syncFixture{
		orchestrator: NewOrchestrator(OrchestratorConfig{
			Targets:    []string{"docs/**/*.md"},
			Workdir:    root,
			StorePath:  storePath,
			Dimensions: testDims,
			Embedder:   embed.NewStaticEmbedder(testDims),
		}),
		docsDir:   docsDir,
		storePath: storePath,
	}
}

func (f *syncFixture) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.docsDir, name), []byte(content), 0o644))
}

func (f *syncFixture) storedIDs(t *testing.T) []string {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{
		Path:       f.storePath,
		Dimensions: testDims,
	})
	require.NoError(t, err)
	defer s.Close()

	ids, err := s.ListIDs(context.Background())
	require.NoError(t, err)
	return ids
}

func TestOrchestrator_InitialSync(t *testing.T) {
	f := newSyncFixture(t)
	f.write(t, "a.md", "alpha")
	f.write(t, "b.md", "beta")

	result, err := f.orchestrator.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.UpsertCount)
	assert.Equal(t, 0, result.DeleteCount)

	assert.Equal(t, []string{
		filepath.Join(f.docsDir, "a.md"),
		filepath.Join(f.docsDir, "b.md"),
	}, f.storedIDs(t))
}

func TestOrchestrator_UpsertMetadata(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.write(t, "a.md", "alpha")
	before := time.Now().UTC().Add(-time.Second)

	_, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)

	s, err := store.Open(ctx, store.Options{
		Path:       f.storePath,
		Dimensions: testDims,
	})
	require.NoError(t, err)
	defer s.Close()

	path := filepath.Join(f.docsDir, "a.md")
	doc, err := s.Get(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, path, doc.Metadata["file_path"])
	assert.Contains(t, doc.Metadata, "modified_at")

	indexedAt, err := time.Parse(time.RFC3339, doc.Metadata["indexed_at"].(string))
	require.NoError(t, err)
	assert.True(t, indexedAt.After(before))
	assert.False(t, indexedAt.After(time.Now().UTC()))
}

func TestOrchestrator_ConvergesAfterFileChanges(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.write(t, "a.md", "alpha")
	f.write(t, "b.md", "beta")
	_, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)

	// Remove b, add c: the next pass deletes b and upserts a and c
	require.NoError(t, os.Remove(filepath.Join(f.docsDir, "b.md")))
	f.write(t, "c.md", "gamma")

	result, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.UpsertCount)
	assert.Equal(t, 1, result.DeleteCount)

	assert.Equal(t, []string{
		filepath.Join(f.docsDir, "a.md"),
		filepath.Join(f.docsDir, "c.md"),
	}, f.storedIDs(t))
}

func TestOrchestrator_EmptyTargetsEmptyCollection(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.write(t, "a.md", "alpha")
	_, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.docsDir, "a.md")))

	result, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UpsertCount)
	assert.Equal(t, 1, result.DeleteCount)
	assert.Empty(t, f.storedIDs(t))
}

func TestOrchestrator_SyncIsIdempotent(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.write(t, "a.md", "alpha")

	for i := 0; i < 3; i++ {
		result, err := f.orchestrator.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.UpsertCount)
	}
	assert.Len(t, f.storedIDs(t), 1)
}

// failingEmbedder always reports the provider as unreachable.
type failingEmbedder struct {
	embed.Embedder
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, rperrors.New(rperrors.ErrCodeEmbeddingUnavailable, "provider down", nil)
}

func TestOrchestrator_EmbeddingFailureAbortsButKeepsDeletions(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.write(t, "a.md", "alpha")
	f.write(t, "b.md", "beta")
	_, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.docsDir, "b.md")))
	f.orchestrator.config.Embedder = &failingEmbedder{Embedder: embed.NewStaticEmbedder(testDims)}

	_, err = f.orchestrator.Sync(ctx)
	require.Error(t, err)
	assert.Equal(t, rperrors.ErrCodeEmbeddingUnavailable, rperrors.GetCode(err))

	// The stale document was already deleted; the pass is not rolled back
	assert.Equal(t, []string{filepath.Join(f.docsDir, "a.md")}, f.storedIDs(t))

	// A later pass with a working provider converges
	f.orchestrator.config.Embedder = embed.NewStaticEmbedder(testDims)
	result, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpsertCount)
}

func TestOrchestrator_LockReleasedAfterPass(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.write(t, "a.md", "alpha")
	_, err := f.orchestrator.Sync(ctx)
	require.NoError(t, err)

	// The collection lock must be free once the pass completes
	lock := store.NewFileLock(f.storePath + ".lock")
	require.NoError(t, lock.Acquire(ctx))
	require.NoError(t, lock.Release())
}
