package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// KeltnerBreakout buys closes above the upper Keltner band and sells once the
// close drops back under the centre line.
type KeltnerBreakout struct {
	base
	period     int
	multiplier float64
}

// NewKeltnerBreakout creates a new instance of KeltnerBreakout with default parameters
func NewKeltnerBreakout() *KeltnerBreakout {
	return &KeltnerBreakout{base: newBase("1h"), period: 20, multiplier: 2}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *KeltnerBreakout) WarmupPeriod() int {
	return s.period * 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *KeltnerBreakout) Indicators(df *core.Dataframe) []core.ChartIndicator {
	upper, middle, lower := indicator.Keltner(df.High, df.Low, df.Close, s.period, s.multiplier)
	df.Metadata["kc_upper"] = upper
	df.Metadata["kc_middle"] = middle
	df.Metadata["kc_lower"] = lower

	return []core.ChartIndicator{
		overlay(df, "Keltner Channel",
			line("Upper", "gray", df.Metadata["kc_upper"]),
			line("Middle", "blue", df.Metadata["kc_middle"]),
			line("Lower", "gray", df.Metadata["kc_lower"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *KeltnerBreakout) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	s.trade(ctx, df, broker,
		df.Close.Crossover(df.Metadata["kc_upper"]),
		df.Close.Crossunder(df.Metadata["kc_middle"]),
	)
}

// GetParameters returns the tunable parameters of KeltnerBreakout
func (s *KeltnerBreakout) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "EMA and ATR period", Default: s.period, Min: 5, Max: 50, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "multiplier", Description: "ATR multiplier of the bands", Default: s.multiplier, Min: 0.5, Max: 4.0, Step: 0.5, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params to the strategy
func (s *KeltnerBreakout) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Int("period", &s.period).Float("multiplier", &s.multiplier).Err()
}
