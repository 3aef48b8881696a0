package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raykavin/stratbook/strategies"
	"github.com/spf13/cobra"
)

// Command line flags shared by every command
var (
	configPath string
	logLevel   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around the full catalog
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stratbook",
		Short:         "Trading strategy catalog, backtester and optimizer",
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./stratbook.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")

	registry := strategies.NewRegistry()
	rootCmd.AddCommand(
		buildListCmd(registry),
		buildDescribeCmd(registry),
		buildBacktestCmd(registry),
		buildOptimizeCmd(registry),
		buildDownloadCmd(),
		buildPairsCmd(),
		buildLiveCmd(registry),
	)

	return rootCmd
}

// loadConfig reads the config with the flags of the running command.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	return LoadConfig(configPath, cmd.Flags())
}
