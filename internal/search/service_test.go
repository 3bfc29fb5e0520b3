package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repocks/repocks/internal/embed"
	rperrors "github.com/repocks/repocks/internal/errors"
	"github.com/repocks/repocks/internal/store"
)

const testDims = 32

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "store.db")
	svc := NewService(Config{
		StorePath:  storePath,
		Dimensions: testDims,
		Embedder:   embed.NewStaticEmbedder(testDims),
		TopK:       10,
	})
	return svc, storePath
}

func seedDocuments(t *testing.T, storePath string, contents map[string]string) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, store.Options{Path: storePath, Dimensions: testDims})
	require.NoError(t, err)
	defer s.Close()

	embedder := embed.NewStaticEmbedder(testDims)
	var docs []store.Document
	for id, content := range contents {
		vec, err := embedder.Embed(ctx, content)
		require.NoError(t, err)
		docs = append(docs, store.Document{ID: id, Content: content, Embedding: vec})
	}
	require.NoError(t, s.Upsert(ctx, docs))
}

func TestService_QueryFindsRelevantDocument(t *testing.T) {
	svc, storePath := newTestService(t)
	seedDocuments(t, storePath, map[string]string{
		"go.md":   "golang concurrency channels goroutines",
		"java.md": "java spring beans inheritance",
	})

	results, err := svc.Query(context.Background(), "golang concurrency channels goroutines", 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "go.md", results[0].ID)
}

func TestService_EmptyCollectionIsNotAnError(t *testing.T) {
	svc, _ := newTestService(t)

	results, err := svc.Query(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestService_EmptyQueryRejected(t *testing.T) {
	svc, _ := newTestService(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Query(context.Background(), text, 0)
		require.Error(t, err)
		assert.Equal(t, rperrors.ErrCodeQueryEmpty, rperrors.GetCode(err))
	}
}

func TestService_TopKLimitsResults(t *testing.T) {
	svc, storePath := newTestService(t)
	seedDocuments(t, storePath, map[string]string{
		"a.md": "alpha",
		"b.md": "beta",
		"c.md": "gamma",
	})

	results, err := svc.Query(context.Background(), "alpha", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestService_ReleasesLockAfterQuery(t *testing.T) {
	svc, storePath := newTestService(t)

	_, err := svc.Query(context.Background(), "anything", 0)
	require.NoError(t, err)

	lock := store.NewFileLock(storePath + ".lock")
	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())
}
