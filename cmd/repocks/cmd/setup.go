package cmd

import (
	"github.com/spf13/cobra"

	"github.com/repocks/repocks/internal/lifecycle"
	"github.com/repocks/repocks/internal/ui"
)

// newSetupCmd creates the setup command.
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Check Ollama and pull the embedding model",
		Long: `Verifies that Ollama is installed and running, waits for it to become
ready, and pulls the configured embedding model if it is missing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd)
		},
	}
}

func runSetup(cmd *cobra.Command) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())

	if cfg.Embeddings.Provider != "ollama" {
		p.Printf("provider is %q, nothing to set up\n", cfg.Embeddings.Provider)
		return nil
	}

	manager := lifecycle.NewOllamaManager(cfg.Embeddings.Host)

	if installed, path := manager.IsInstalled(); installed {
		p.Printf("ollama found at %s\n", path)
	} else {
		p.Warnf("ollama binary not found on PATH; install it from https://ollama.com")
	}

	p.Printf("waiting for ollama at %s\n", manager.Host())
	if err := manager.WaitForReady(cmd.Context(), 0); err != nil {
		p.Errorf("ollama did not become ready: %v", err)
		return err
	}

	model := cfg.Embeddings.Model
	p.Printf("ensuring model %s is available\n", model)
	err = manager.PullModel(cmd.Context(), model, func(progress lifecycle.PullProgress) {
		if progress.Total > 0 {
			p.Printf("\r%s: %.0f%%", progress.Status, progress.Percent)
		}
	})
	if err != nil {
		p.Errorf("model pull failed: %v", err)
		return err
	}
	p.Printf("\n")

	p.Successf("setup complete, run 'repocks index' to build the collection")
	return nil
}
