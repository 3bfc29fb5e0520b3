package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/search"
	"github.com/repocks/repocks/internal/ui"
)

// newQueryCmd creates the query command.
func newQueryCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Search the indexed documents by meaning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, strings.Join(args, " "), topK)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Maximum number of results (default from config)")

	return cmd
}

func runQuery(cmd *cobra.Command, question string, topK int) error {
	cfg, workdir, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	svc := search.NewService(search.Config{
		StorePath:  config.StorePath(workdir),
		LockPath:   config.LockPath(workdir),
		Dimensions: cfg.Embeddings.Dimensions,
		Embedder:   embedder,
		TopK:       cfg.Query.TopK,
	})

	results, err := svc.Query(cmd.Context(), question, topK)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	if len(results) == 0 {
		p.Warnf("no documents found")
		return nil
	}

	for i, r := range results {
		if i > 0 {
			p.Printf("\n")
		}
		p.Successf("%s (score: %.4f)", r.ID, r.Score)
		p.Printf("%s\n", strings.TrimRight(r.Content, "\n"))
	}
	return nil
}
