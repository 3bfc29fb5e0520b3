package cmd

import (
	"github.com/spf13/cobra"

	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/lifecycle"
	"github.com/repocks/repocks/internal/store"
	"github.com/repocks/repocks/internal/ui"
)

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show collection statistics and provider health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	cfg, workdir, err := loadConfig()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())

	session, err := store.Open(cmd.Context(), store.Options{
		Path:       config.StorePath(workdir),
		LockPath:   config.LockPath(workdir),
		Dimensions: cfg.Embeddings.Dimensions,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	stats, err := session.Stats(cmd.Context())
	if err != nil {
		return err
	}

	p.Printf("collection: %s\n", config.StorePath(workdir))
	p.Printf("documents:  %d (%d embedded)\n", stats.DocumentCount, stats.EmbeddedCount)
	p.Printf("size:       %d bytes\n", stats.SizeBytes)
	p.Printf("provider:   %s (%s, %d dimensions)\n",
		cfg.Embeddings.Provider, cfg.Embeddings.Model, cfg.Embeddings.Dimensions)

	if cfg.Embeddings.Provider != "ollama" {
		return nil
	}

	manager := lifecycle.NewOllamaManager(cfg.Embeddings.Host)
	ollama, err := manager.Status(cmd.Context(), cfg.Embeddings.Model)
	if err != nil {
		p.Warnf("ollama status check failed: %v", err)
		return nil
	}

	switch {
	case !ollama.Running:
		p.Warnf("ollama is not running at %s; start it and run 'repocks index'", manager.Host())
	case !ollama.HasModel:
		p.Warnf("model %s is not pulled; run: ollama pull %s", ollama.TargetModel, ollama.TargetModel)
	default:
		p.Successf("ollama reachable, model %s available", ollama.TargetModel)
	}
	return nil
}
