package cmd

import (
	"github.com/spf13/cobra"

	"github.com/repocks/repocks/internal/mcp"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Starts the MCP server. stdout carries JSON-RPC exclusively; all
diagnostics go to the log file. Configure your MCP client to run
'repocks serve' as a stdio server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, workdir, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	server, err := mcp.NewServer(cfg, workdir, embedder)
	if err != nil {
		return err
	}

	return server.Serve(cmd.Context())
}
