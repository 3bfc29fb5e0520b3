package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/index"
	"github.com/repocks/repocks/internal/ui"
	"github.com/repocks/repocks/internal/watcher"
)

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch target files and resync on changes",
		Long: `Runs an initial sync pass, then watches the target directories and
runs another pass whenever files change. Bursts of changes are
coalesced into a single pass. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
}

func runWatch(cmd *cobra.Command) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sync := func() {
		result, err := orchestrator.Sync(ctx)
		if err != nil {
			p.Errorf("sync failed: %v", err)
			slog.Error("watch sync failed", slog.String("error", err.Error()))
			return
		}
		p.Successf("synced: %d upserted, %d deleted",
			result.UpsertCount, result.DeleteCount)
	}

	sync()

	w, err := watcher.New(watcher.Options{
		Targets:  cfg.Targets,
		Workdir:  workdir,
		Debounce: time.Duration(cfg.Watch.Debounce),
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	p.Printf("watching %d target(s), Ctrl-C to stop\n", len(cfg.Targets))

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Triggers():
			if !ok {
				return nil
			}
			sync()
		}
	}
}
