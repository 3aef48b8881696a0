package optimizer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/raykavin/stratbook/pkg/order"
	"github.com/raykavin/stratbook/pkg/storage"
	"github.com/raykavin/stratbook/pkg/strategy"
)

// StrategyFactory builds a fresh strategy for one parameter set.
type StrategyFactory func(params core.ParameterSet) (strategy.Strategy, error)

// RegistryStrategyFactory builds the named catalog strategy, filling missing
// parameters with their defaults.
func RegistryStrategyFactory(registry *strategy.Registry, name string) StrategyFactory {
	return func(params core.ParameterSet) (strategy.Strategy, error) {
		return registry.New(name, params)
	}
}

var _ core.Evaluator = (*BacktestStrategyEvaluator)(nil)

// BacktestStrategyEvaluator scores a parameter set by backtesting it on a
// fresh paper wallet and in-memory storage.
type BacktestStrategyEvaluator struct {
	factory       StrategyFactory
	settings      core.Settings
	feed          core.Feeder
	log           logger.Logger
	startBalance  float64
	quoteCurrency string
	walletOptions []exchange.PaperWalletOption
}

type EvaluatorOption func(*BacktestStrategyEvaluator)

// WithWalletOptions applies extra options, such as fees, to every paper wallet.
func WithWalletOptions(options ...exchange.PaperWalletOption) EvaluatorOption {
	return func(e *BacktestStrategyEvaluator) {
		e.walletOptions = append(e.walletOptions, options...)
	}
}

// NewBacktestStrategyEvaluator evaluates on feed, which must be safe to
// subscribe to concurrently when the search runs in parallel.
func NewBacktestStrategyEvaluator(factory StrategyFactory, settings core.Settings, feed core.Feeder,
	log logger.Logger, startBalance float64, quoteCurrency string, options ...EvaluatorOption) *BacktestStrategyEvaluator {

	evaluator := &BacktestStrategyEvaluator{
		factory:       factory,
		settings:      settings,
		feed:          feed,
		log:           log,
		startBalance:  startBalance,
		quoteCurrency: quoteCurrency,
	}
	for _, option := range options {
		option(evaluator)
	}
	return evaluator
}

// Evaluate backtests a fresh strategy built with params and returns its metrics
func (e *BacktestStrategyEvaluator) Evaluate(ctx context.Context, params core.ParameterSet) (*core.OptimizerResult, error) {
	start := time.Now()

	str, err := e.factory(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}

	db, err := storage.FromMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer db.Close()

	options := append([]exchange.PaperWalletOption{
		exchange.WithPaperAsset(e.quoteCurrency, e.startBalance),
		exchange.WithDataFeed(e.feed),
	}, e.walletOptions...)
	wallet := exchange.NewPaperWallet(e.quoteCurrency, e.log, options...)

	bot, err := stratbook.NewBot(ctx, e.settings, wallet, str,
		stratbook.WithBacktest(wallet),
		stratbook.WithStorage(db),
		stratbook.WithLogger(e.log),
		stratbook.WithProgressOutput(io.Discard),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	if err := bot.Run(ctx); err != nil {
		return nil, fmt.Errorf("backtest failed: %w", err)
	}

	return &core.OptimizerResult{
		Parameters: params,
		Metrics:    collectMetrics(bot.Controller().Results(), wallet),
		Duration:   time.Since(start),
	}, nil
}

// collectMetrics aggregates the per pair summaries. Payoff and profit factor
// are weighted by trade count; drawdown is reported as a positive fraction.
func collectMetrics(results map[string]*order.TradeSummary, wallet *exchange.PaperWallet) map[string]float64 {
	metrics := make(map[string]float64)

	var (
		profit, payoff, profitFactor, sqn float64
		wins, trades, pairs               int
	)

	for pair, summary := range results {
		count := summary.TradeCount()
		if count == 0 {
			continue
		}

		pairs++
		trades += count
		wins += len(summary.Win())
		profit += summary.Profit()
		payoff += summary.Payoff() * float64(count)
		profitFactor += summary.ProfitFactor() * float64(count)
		sqn += summary.SQN()

		metrics[pair+"_profit"] = summary.Profit()
		metrics[pair+"_win_rate"] = summary.WinPercentage() / 100
		metrics[pair+"_trades"] = float64(count)
	}

	metrics[string(core.MetricProfit)] = profit
	metrics[string(core.MetricTradeCount)] = float64(trades)
	metrics[string(core.MetricWinRate)] = 0
	metrics[string(core.MetricPayoff)] = 0
	metrics[string(core.MetricProfitFactor)] = 0
	metrics[string(core.MetricSQN)] = 0
	if trades > 0 {
		metrics[string(core.MetricWinRate)] = float64(wins) / float64(trades)
		metrics[string(core.MetricPayoff)] = payoff / float64(trades)
		metrics[string(core.MetricProfitFactor)] = profitFactor / float64(trades)
		metrics[string(core.MetricSQN)] = sqn / float64(pairs)
	}

	stats := wallet.Stats()
	metrics[string(core.MetricDrawdown)] = -stats.MaxDrawdown
	metrics["final_balance"] = stats.Final
	metrics["return_pct"] = stats.ProfitPct * 100
	return metrics
}
