package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/repocks/repocks/configs"
	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/ui"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default repocks.yaml in the current directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	workdir, err := os.Getwd()
	if err != nil {
		return err
	}

	path := filepath.Join(workdir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigFileName)
	}

	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.Successf("wrote %s", path)
	p.Printf("edit the targets list, then run 'repocks index'\n")
	return nil
}
