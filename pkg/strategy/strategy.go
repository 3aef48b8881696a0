// Package strategy runs trading rules against candle streams and keeps the
// catalog of available rules.
package strategy

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
)

type Strategy interface {
	// Timeframe is the candle period the strategy runs on, eg: 15m, 1h, 1d
	Timeframe() string
	// WarmupPeriod is how many candles must be loaded before OnCandle is first called.
	// It is also the size of the dataframe window handed to Indicators and OnCandle.
	WarmupPeriod() int
	// Indicators fills df.Metadata and returns what should be charted.
	Indicators(df *core.Dataframe) []core.ChartIndicator
	// OnCandle runs after each closed candle, once indicators are filled.
	OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker)
}

// HighFrequencyStrategy also reacts to partial candles of the current period.
type HighFrequencyStrategy interface {
	Strategy
	OnPartialCandle(ctx context.Context, df *core.Dataframe, broker core.Broker)
}

// Tunable is a strategy that exposes its parameters for configuration and optimization.
type Tunable interface {
	Strategy
	core.StrategyEvaluator
}
