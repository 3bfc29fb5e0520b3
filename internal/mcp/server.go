package mcp

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/embed"
	"github.com/repocks/repocks/internal/index"
	"github.com/repocks/repocks/internal/search"
	"github.com/repocks/repocks/internal/store"
	"github.com/repocks/repocks/pkg/version"
)

// Server is the MCP server for repocks.
// It exposes the sync orchestrator and query service as MCP tools over stdio.
type Server struct {
	mcp          *mcp.Server
	orchestrator *index.Orchestrator
	query        *search.Service
	embedder     embed.Embedder
	config       *config.Config
	workdir      string
	logger       *slog.Logger
}

// NewServer creates a new MCP server wired to the given working directory.
func NewServer(cfg *config.Config, workdir string, embedder embed.Embedder) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	s := &Server{
		orchestrator: index.NewOrchestrator(index.OrchestratorConfig{
			Targets:    cfg.Targets,
			Workdir:    workdir,
			StorePath:  config.StorePath(workdir),
			LockPath:   config.LockPath(workdir),
			Dimensions: cfg.Embeddings.Dimensions,
			Embedder:   embedder,
		}),
		query: search.NewService(search.Config{
			StorePath:  config.StorePath(workdir),
			LockPath:   config.LockPath(workdir),
			Dimensions: cfg.Embeddings.Dimensions,
			Embedder:   embedder,
			TopK:       cfg.Query.TopK,
		}),
		embedder: embedder,
		config:   cfg,
		workdir:  workdir,
		logger:   slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "repocks",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()

	return s, nil
}

// registerTools registers the repocks tool surface.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reindex",
		Description: "Synchronize the document collection with the files on disk. Indexes new and changed files matching the configured targets and removes documents whose files are gone. Run this after editing documents.",
	}, s.reindexHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_documents",
		Description: "Search the indexed documents by meaning. Returns the most relevant document contents for a natural-language question. Use this to recall notes, docs, and decisions stored in the collection.",
	}, s.queryDocumentsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "status",
		Description: "Report collection statistics and embedding provider health. Use to verify the index is populated before querying.",
	}, s.statusHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", 3))
}

// reindexHandler runs one full sync pass. Failures are reported in-band so
// the client sees what went wrong instead of a bare protocol error.
func (s *Server) reindexHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ReindexInput) (
	*mcp.CallToolResult,
	ReindexOutput,
	error,
) {
	result, err := s.orchestrator.Sync(ctx)
	if err != nil {
		s.logger.Error("reindex failed", slog.String("error", err.Error()))
		return nil, ReindexOutput{
			Success: false,
			Error:   MapError(err).Message,
		}, nil
	}

	return nil, ReindexOutput{
		Success:     true,
		UpsertCount: result.UpsertCount,
		DeleteCount: result.DeleteCount,
	}, nil
}

// queryDocumentsHandler answers a similarity query with formatted contents.
func (s *Server) queryDocumentsHandler(ctx context.Context, _ *mcp.CallToolRequest, input QueryDocumentsInput) (
	*mcp.CallToolResult,
	QueryDocumentsOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, QueryDocumentsOutput{}, NewInvalidParamsError("query parameter is required")
	}

	results, err := s.query.Query(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, QueryDocumentsOutput{}, MapError(err)
	}

	return nil, QueryDocumentsOutput{Contents: FormatResults(results)}, nil
}

// statusHandler reports collection statistics and provider availability.
func (s *Server) statusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult,
	StatusOutput,
	error,
) {
	session, err := store.Open(ctx, store.Options{
		Path:       config.StorePath(s.workdir),
		LockPath:   config.LockPath(s.workdir),
		Dimensions: s.config.Embeddings.Dimensions,
	})
	if err != nil {
		return nil, StatusOutput{}, MapError(err)
	}
	defer session.Close()

	stats, err := session.Stats(ctx)
	if err != nil {
		return nil, StatusOutput{}, MapError(err)
	}

	return nil, StatusOutput{
		DocumentCount: stats.DocumentCount,
		EmbeddedCount: stats.EmbeddedCount,
		SizeBytes:     stats.SizeBytes,
		Provider:      s.config.Embeddings.Provider,
		Model:         s.embedder.ModelName(),
		Dimensions:    s.embedder.Dimensions(),
		ProviderUp:    s.embedder.Available(ctx),
	}, nil
}

// Serve runs the MCP server over stdio until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("MCP server starting",
		slog.String("transport", "stdio"),
		slog.String("workdir", s.workdir))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("MCP server stopped gracefully")
	return nil
}
