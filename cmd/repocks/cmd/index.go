package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/index"
	"github.com/repocks/repocks/internal/ui"
)

// newIndexCmd creates the index command.
func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Synchronize the collection with the files on disk",
		Long: `Runs one sync pass: files matching the configured targets are read,
embedded, and upserted; documents whose files are gone are removed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd)
		},
	}
}

// runIndex runs a single sync pass and reports the outcome.
func runIndex(cmd *cobra.Command) error {
	cfg, workdir, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	orchestrator := index.NewOrchestrator(index.OrchestratorConfig{
		Targets:    cfg.Targets,
		Workdir:    workdir,
		StorePath:  config.StorePath(workdir),
		LockPath:   config.LockPath(workdir),
		Dimensions: cfg.Embeddings.Dimensions,
		Embedder:   embedder,
	})

	p := ui.NewPrinter(cmd.OutOrStdout())

	result, err := orchestrator.Sync(cmd.Context())
	if err != nil {
		p.Errorf("sync failed: %v", err)
		return err
	}

	p.Successf("synced: %d upserted, %d deleted (%s)",
		result.UpsertCount, result.DeleteCount, result.Duration.Round(time.Millisecond))
	return nil
}
