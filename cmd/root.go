// Package cmd defines the CLI commands for the steamreqs executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reqmirror/steamreqs/internal/config"
	"github.com/reqmirror/steamreqs/internal/logging"
)

var cfgFile string

// deps carries the services built once in PersistentPreRunE and shared by
// every subcommand.
type deps struct {
	cfg    config.Config
	logger *zap.Logger
}

var services deps

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steamreqs",
		Short: "Mirror Steam hardware requirements into a local database",
		Long: `steamreqs incrementally crawls the Steam catalog, stores normalized
hardware requirement records in a local SQLite database, and exports them
as sharded static JSON for a client-side browsing site.`,

		// Config and logger are built here, after flags are parsed and
		// before any subcommand's RunE.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			services = deps{cfg: cfg, logger: logger}
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if services.logger != nil {
				// Sync can fail on stderr; nothing useful to do about it.
				_ = services.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env vars override)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "steamreqs: %v\n", err)
		os.Exit(1)
	}
}
