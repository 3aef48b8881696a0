package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

// Backtest and optimize flags
var (
	strategyParams []string
	dataLimit      string
)

// addRunFlags registers the flags shared by every command running a strategy
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("strategy", "s", "", "Catalog strategy name (see list)")
	cmd.Flags().StringArrayVarP(&strategyParams, "param", "P", nil, "Strategy parameter as name=value, repeatable")
	cmd.Flags().StringSliceP("pair", "p", nil, "Trading pairs (e.g. BTCUSDT,ETHUSDT)")
	cmd.Flags().Float64("balance", 0, "Starting quote balance")
	cmd.Flags().String("asset", "", "Quote asset of the paper wallet")
	cmd.Flags().Float64("maker-fee", 0, "Maker fee as a fraction")
	cmd.Flags().Float64("taker-fee", 0, "Taker fee as a fraction")
}

// addDataFlags registers the flags selecting CSV candle files
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("data", "d", nil, "CSV data as PAIR=file.csv, repeatable")
	cmd.Flags().String("data-timeframe", "", "Timeframe the CSV files were recorded at (default the strategy timeframe)")
	cmd.Flags().StringVar(&dataLimit, "limit", "", "Only use the last period of data (e.g. 90d)")
}

func buildBacktestCmd(registry *strategy.Registry) *cobra.Command {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a catalog strategy over CSV data with a paper wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBacktest(cmd, registry)
		},
	}

	addRunFlags(backtestCmd)
	addDataFlags(backtestCmd)
	backtestCmd.Flags().String("storage", "", "Order storage: empty for memory, sqlite:path or a buntdb file")
	backtestCmd.Flags().StringP("returns", "r", "", "Write per trade returns to this CSV file")

	return backtestCmd
}

func runBacktest(cmd *cobra.Command, registry *strategy.Registry) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	params, err := cfg.StrategyParams(strategyParams)
	if err != nil {
		return err
	}

	str, err := registry.New(cfg.Strategy.Name, params)
	if err != nil {
		return err
	}

	feed, err := loadFeed(cfg, str.Timeframe())
	if err != nil {
		return err
	}

	wallet := newPaperWallet(cfg, exchange.WithDataFeed(feed))

	db, err := OpenStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	settings := cfg.Settings()
	settings.Pairs = feedPairs(feed)

	bot, err := stratbook.NewBot(cmd.Context(), settings, wallet, str,
		stratbook.WithBacktest(wallet),
		stratbook.WithStorage(db),
		stratbook.WithLogLevel(cfg.LogLevel),
		stratbook.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}

	stratbook.DefaultLog.Infof("backtesting %s on %s", cfg.Strategy.Name, strings.Join(settings.Pairs, ", "))
	if err := bot.Run(cmd.Context()); err != nil {
		return err
	}

	bot.Summary()

	if cfg.Returns != "" {
		if err := bot.SaveReturns(cfg.Returns); err != nil {
			return fmt.Errorf("save returns: %w", err)
		}
	}
	return nil
}

// loadFeed reads the configured CSV files resampled to timeframe.
func loadFeed(cfg *Config, timeframe string) (*exchange.CSVFeed, error) {
	feeds, err := cfg.Feeds(timeframe)
	if err != nil {
		return nil, err
	}

	feed, err := exchange.NewCSVFeed(timeframe, feeds...)
	if err != nil {
		return nil, err
	}

	if dataLimit != "" {
		duration, err := str2duration.ParseDuration(dataLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid limit %q: %w", dataLimit, err)
		}
		feed.Limit(duration)
	}
	return feed, nil
}

// feedPairs returns the pairs loaded by feed in a stable order
func feedPairs(feed *exchange.CSVFeed) []string {
	return slices.Sorted(maps.Keys(feed.Feeds))
}

// newPaperWallet creates the simulated wallet described by cfg
func newPaperWallet(cfg *Config, options ...exchange.PaperWalletOption) *exchange.PaperWallet {
	options = append([]exchange.PaperWalletOption{
		exchange.WithPaperAsset(cfg.Wallet.Asset, cfg.Wallet.Balance),
		exchange.WithPaperFee(cfg.Wallet.MakerFee, cfg.Wallet.TakerFee),
	}, options...)
	return exchange.NewPaperWallet(cfg.Wallet.Asset, stratbook.DefaultLog, options...)
}
