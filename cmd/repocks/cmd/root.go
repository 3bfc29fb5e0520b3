// Package cmd provides the CLI commands for repocks.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/repocks/repocks/internal/config"
	"github.com/repocks/repocks/internal/embed"
	"github.com/repocks/repocks/internal/logging"
	"github.com/repocks/repocks/internal/profiling"
	"github.com/repocks/repocks/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()

	profileCPU   string
	profileMem   string
	profileTrace string
	profiler     = profiling.NewProfiler()
	cpuCleanup   func()
	traceCleanup func()
)

// NewRootCmd creates the root command for the repocks CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repocks",
		Short: "Local-first document sync and retrieval MCP server",
		Long: `repocks keeps a single-file vector collection in sync with the markdown
files matching your configured targets, and answers similarity queries
over them.

Run 'repocks serve' to expose the collection to AI assistants over MCP,
or use 'repocks index' and 'repocks query' directly from the shell.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			// Default behavior: bring the collection up to date, then serve
			if err := runIndex(cmd); err != nil {
				return err
			}
			return runServe(cmd)
		},
	}

	cmd.SetVersionTemplate("repocks version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.repocks/logs/")
	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startLoggingAndProfiling
	cmd.PersistentPostRunE = stopLoggingAndProfiling

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLoggingAndProfiling sets up file logging and profiling before any
// command runs.
func startLoggingAndProfiling(_ *cobra.Command, _ []string) error {
	level := ""
	if debugMode {
		level = "debug"
	}

	cleanup, err := logging.SetupDefault(level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup

	if debugMode {
		slog.Debug("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	}

	if profileCPU != "" {
		cpuCleanup, err = profiler.StartCPU(profileCPU)
		if err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
	}

	if profileTrace != "" {
		traceCleanup, err = profiler.StartTrace(profileTrace)
		if err != nil {
			if cpuCleanup != nil {
				cpuCleanup()
			}
			return fmt.Errorf("failed to start trace: %w", err)
		}
	}

	return nil
}

// stopLoggingAndProfiling stops profiling, writes the memory profile if
// requested, and closes the log file.
func stopLoggingAndProfiling(_ *cobra.Command, _ []string) error {
	if cpuCleanup != nil {
		cpuCleanup()
		cpuCleanup = nil
	}
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}

	if profileMem != "" {
		if err := profiler.WriteHeap(profileMem); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
	}

	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads the configuration for the current working directory.
func loadConfig() (*config.Config, string, error) {
	workdir, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(workdir)
	if err != nil {
		return nil, "", err
	}
	return cfg, workdir, nil
}

// newEmbedder builds the configured embedder, wrapped in the LRU cache.
func newEmbedder(cfg *config.Config) (embed.Embedder, error) {
	return embed.New(embed.FactoryConfig{
		Provider:   cfg.Embeddings.Provider,
		Host:       cfg.Embeddings.Host,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		BatchSize:  cfg.Embeddings.BatchSize,
		Timeout:    time.Duration(cfg.Embeddings.Timeout),
		CacheSize:  cfg.Embeddings.CacheSize,
	})
}
