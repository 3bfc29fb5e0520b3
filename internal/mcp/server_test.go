package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/embed"
)

const testDims = 32

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	workdir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workdir, "docs"), 0o755))

	cfg := config.NewConfig()
	cfg.Targets = []string{"docs/**/*.md"}
	cfg.Embeddings.Provider = "static"
	cfg.Embeddings.Dimensions = testDims

	s, err := NewServer(cfg, workdir, embed.NewStaticEmbedder(testDims))
	require.NoError(t, err)
	return s, workdir
}

func writeDoc(t *testing.T, workdir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "docs", name), []byte(content), 0o644))
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, t.TempDir(), embed.NewStaticEmbedder(testDims))
	assert.Error(t, err)

	_, err = NewServer(config.NewConfig(), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestReindexTool(t *testing.T) {
	s, workdir := newTestServer(t)
	writeDoc(t, workdir, "a.md", "alpha notes")
	writeDoc(t, workdir, "b.md", "beta notes")

	_, out, err := s.reindexHandler(context.Background(), nil, ReindexInput{})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 2, out.UpsertCount)
	assert.Equal(t, 0, out.DeleteCount)
	assert.Empty(t, out.Error)
}

func TestReindexTool_RemovesDeletedFiles(t *testing.T) {
	s, workdir := newTestServer(t)
	writeDoc(t, workdir, "a.md", "alpha notes")
	writeDoc(t, workdir, "b.md", "beta notes")

	_, _, err := s.reindexHandler(context.Background(), nil, ReindexInput{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(workdir, "docs", "b.md")))

	_, out, err := s.reindexHandler(context.Background(), nil, ReindexInput{})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.UpsertCount)
	assert.Equal(t, 1, out.DeleteCount)
}

func TestQueryDocumentsTool(t *testing.T) {
	s, workdir := newTestServer(t)
	writeDoc(t, workdir, "go.md", "golang concurrency channels goroutines")
	writeDoc(t, workdir, "java.md", "java spring beans inheritance")

	_, _, err := s.reindexHandler(context.Background(), nil, ReindexInput{})
	require.NoError(t, err)

	_, out, err := s.queryDocumentsHandler(context.Background(), nil, QueryDocumentsInput{
		Query: "golang concurrency channels goroutines",
		TopK:  1,
	})
	require.NoError(t, err)
	assert.Contains(t, out.Contents, "go.md")
	assert.Contains(t, out.Contents, "golang concurrency")
	assert.NotContains(t, out.Contents, "java.md")
}

func TestQueryDocumentsTool_EmptyCollection(t *testing.T) {
	s, _ := newTestServer(t)

	_, out, err := s.queryDocumentsHandler(context.Background(), nil, QueryDocumentsInput{
		Query: "anything at all",
	})
	require.NoError(t, err)
	assert.Equal(t, NoResultsMessage, out.Contents)
}

func TestQueryDocumentsTool_RejectsEmptyQuery(t *testing.T) {
	s, _ := newTestServer(t)

	_, _, err := s.queryDocumentsHandler(context.Background(), nil, QueryDocumentsInput{Query: "   "})
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestStatusTool(t *testing.T) {
	s, workdir := newTestServer(t)
	writeDoc(t, workdir, "a.md", "alpha notes")

	_, _, err := s.reindexHandler(context.Background(), nil, ReindexInput{})
	require.NoError(t, err)

	_, out, err := s.statusHandler(context.Background(), nil, StatusInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.DocumentCount)
	assert.Equal(t, 1, out.EmbeddedCount)
	assert.Equal(t, "static", out.Model)
	assert.Equal(t, testDims, out.Dimensions)
	assert.True(t, out.ProviderUp)
}
