package main

import (
	"fmt"
	"maps"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/optimizer"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	methodGrid   = "grid"
	methodRandom = "random"
)

func buildOptimizeCmd(registry *strategy.Registry) *cobra.Command {
	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search the parameter space of a catalog strategy",
		Long: "Backtests many parameter sets of a strategy and ranks them by a metric. " +
			"Parameters fixed with --param are left out of the search.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptimize(cmd, registry)
		},
	}

	addRunFlags(optimizeCmd)
	addDataFlags(optimizeCmd)
	optimizeCmd.Flags().StringP("method", "m", "", "Search method: grid or random")
	optimizeCmd.Flags().IntP("iterations", "i", 0, "Maximum parameter sets to evaluate")
	optimizeCmd.Flags().Int("parallelism", 0, "Backtests run at the same time")
	optimizeCmd.Flags().String("metric", "", "Metric to rank by: profit, win_rate, payoff, profit_factor, sqn, drawdown, trade_count")
	optimizeCmd.Flags().Bool("minimize", false, "Rank by the lowest metric value")
	optimizeCmd.Flags().Int("top", 0, "Results to print")
	optimizeCmd.Flags().Int64("seed", 0, "Random search seed, zero for a time based seed")
	optimizeCmd.Flags().StringSlice("search", nil, "Only search these parameters")
	optimizeCmd.Flags().StringP("output", "o", "", "Write every result to this CSV file")

	return optimizeCmd
}

func runOptimize(cmd *cobra.Command, registry *strategy.Registry) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	definition, err := registry.Get(cfg.Strategy.Name)
	if err != nil {
		return err
	}

	fixed, err := cfg.StrategyParams(strategyParams)
	if err != nil {
		return err
	}

	searchable := lo.Reject(optimizer.Searchable(definition.Parameters(), cfg.Optimizer.Search...),
		func(param core.Parameter, _ int) bool {
			_, ok := fixed[param.Name]
			return ok
		})
	if len(searchable) == 0 {
		return fmt.Errorf("%s has no searchable parameters left", definition.Name)
	}

	// the fixed values apply to every evaluated set
	if _, err := registry.New(definition.Name, fixed); err != nil {
		return err
	}

	feed, err := loadFeed(cfg, definition.New().Timeframe())
	if err != nil {
		return err
	}

	settings := cfg.Settings()
	settings.Pairs = feedPairs(feed)

	factory := func(params core.ParameterSet) (strategy.Strategy, error) {
		merged := fixed.Clone()
		maps.Copy(merged, params)
		return registry.New(definition.Name, merged)
	}

	evaluator := optimizer.NewBacktestStrategyEvaluator(factory, settings, feed, stratbook.DefaultLog,
		cfg.Wallet.Balance, cfg.Wallet.Asset,
		optimizer.WithWalletOptions(exchange.WithPaperFee(cfg.Wallet.MakerFee, cfg.Wallet.TakerFee)),
	)

	metric := core.MetricName(cfg.Optimizer.Metric)
	config := optimizer.NewConfig().
		WithParameters(searchable...).
		WithMaxIterations(cfg.Optimizer.Iterations).
		WithParallelism(cfg.Optimizer.Parallelism).
		WithLogger(stratbook.DefaultLog).
		WithTargetMetric(metric, !cfg.Optimizer.Minimize).
		WithTopN(cfg.Optimizer.Top).
		WithSeed(cfg.Optimizer.Seed)

	search, err := newOptimizer(cfg.Optimizer.Method, config)
	if err != nil {
		return err
	}

	stratbook.DefaultLog.Infof("optimizing %s over %d parameters with %s search",
		definition.Name, len(searchable), cfg.Optimizer.Method)

	results, err := search.Optimize(cmd.Context(), evaluator, metric, !cfg.Optimizer.Minimize)
	if err != nil {
		return err
	}

	optimizer.PrintResults(cmd.OutOrStdout(), results, metric, cfg.Optimizer.Top)

	if cfg.Optimizer.Output != "" {
		if err := optimizer.SaveResultsToCSV(results, cfg.Optimizer.Output); err != nil {
			return fmt.Errorf("save results: %w", err)
		}
		stratbook.DefaultLog.Infof("results saved to %s", cfg.Optimizer.Output)
	}
	return nil
}

// newOptimizer creates the search named by method
func newOptimizer(method string, config *optimizer.Config) (core.Optimizer, error) {
	switch method {
	case methodGrid:
		return optimizer.NewGridSearch(config)
	case methodRandom:
		return optimizer.NewRandomSearch(config)
	default:
		return nil, fmt.Errorf("unknown search method %q, expected %s or %s", method, methodGrid, methodRandom)
	}
}
