package main

import (
	"fmt"
	"os"

	"github.com/h0rv/azboards/internal/ado"
	"github.com/h0rv/azboards/internal/config"
	"github.com/h0rv/azboards/internal/logging"
	"github.com/h0rv/azboards/internal/relay"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFlag  string
	verboseFlag bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "azboards",
		Short: "Relay and terminal viewer for Azure Boards work items",
		Long: `azboards fetches Azure Boards work items for a project, optionally
filtered by work item type and assignee.

  azboards serve   runs the HTTP relay (POST /fetch-azure-boards)
  azboards fetch   queries once and prints a table, JSON or an interactive board

Authentication:
  The relay takes a personal access token per request. The fetch command
  reads --pat, then AZURE_DEVOPS_EXT_PAT, then AZBOARDS_PAT.

The token needs the Work Items (Read) scope.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a YAML config file (default: ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())
	return rootCmd
}

// loadRuntime reads config and builds the logger and pipeline shared by all commands.
// quiet discards logs unless --verbose is set, so they do not draw over the TUI.
func loadRuntime(quiet bool) (*config.Config, *zap.Logger, *relay.Fetcher, *ado.Client, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if verboseFlag {
		cfg.Log.Level = "debug"
		cfg.Log.Format = "console"
	}

	logger := zap.NewNop()
	if !quiet || verboseFlag {
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	client := ado.New(
		ado.WithBaseURL(cfg.Remote.BaseURL),
		ado.WithTimeout(cfg.Remote.Timeout),
		ado.WithLogger(logger.Named("ado")),
	)
	fetcher := relay.New(client,
		relay.WithBatchSize(cfg.Remote.BatchSize),
		relay.WithConcurrency(cfg.Remote.Concurrency),
		relay.WithLogger(logger.Named("relay")),
	)
	return cfg, logger, fetcher, client, nil
}
