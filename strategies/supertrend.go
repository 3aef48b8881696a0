package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// SuperTrend follows the direction flips of the SuperTrend line.
type SuperTrend struct {
	base
	atrPeriod int
	factor    float64
}

// NewSuperTrend creates a new instance of SuperTrend with default parameters
func NewSuperTrend() *SuperTrend {
	return &SuperTrend{base: newBase("1h"), atrPeriod: 10, factor: 3}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *SuperTrend) WarmupPeriod() int {
	return s.atrPeriod * 5
}

// Indicators calculates and returns the indicators used by this strategy
func (s *SuperTrend) Indicators(df *core.Dataframe) []core.ChartIndicator {
	trend, direction := indicator.SuperTrend(df.High, df.Low, df.Close, s.atrPeriod, s.factor)
	df.Metadata["supertrend"] = trend
	df.Metadata["direction"] = direction

	return []core.ChartIndicator{
		overlay(df, "SuperTrend", line("SuperTrend", "green", df.Metadata["supertrend"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *SuperTrend) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	direction := df.Metadata["direction"]
	s.trade(ctx, df, broker,
		direction.Last(0) > 0 && direction.Last(1) < 0,
		direction.Last(0) < 0 && direction.Last(1) > 0,
	)
}

// GetParameters returns the tunable parameters of SuperTrend
func (s *SuperTrend) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "atr_period", Description: "ATR period", Default: s.atrPeriod, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "factor", Description: "ATR multiplier of the bands", Default: s.factor, Min: 1.0, Max: 5.0, Step: 0.5, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params to the strategy
func (s *SuperTrend) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Int("atr_period", &s.atrPeriod).Float("factor", &s.factor).Err()
}
