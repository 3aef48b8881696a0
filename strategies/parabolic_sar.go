package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// ParabolicSAR buys when the close moves above the SAR and sells when it
// drops below.
type ParabolicSAR struct {
	base
	acceleration float64
	maximum      float64
}

// NewParabolicSAR creates a new instance of ParabolicSAR with default parameters
func NewParabolicSAR() *ParabolicSAR {
	return &ParabolicSAR{base: newBase("1h"), acceleration: 0.02, maximum: 0.2}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *ParabolicSAR) WarmupPeriod() int {
	return 50
}

// Indicators calculates and returns the indicators used by this strategy
func (s *ParabolicSAR) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["sar"] = indicator.SAR(df.High, df.Low, s.acceleration, s.maximum)

	return []core.ChartIndicator{
		overlay(df, "Parabolic SAR",
			core.IndicatorMetric{Name: "SAR", Color: "black", Style: core.StyleScatter, Values: df.Metadata["sar"]},
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *ParabolicSAR) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	sar := df.Metadata["sar"]
	s.trade(ctx, df, broker, df.Close.Crossover(sar), df.Close.Crossunder(sar))
}

// GetParameters returns the tunable parameters of ParabolicSAR
func (s *ParabolicSAR) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "acceleration", Description: "Acceleration factor step", Default: s.acceleration, Min: 0.01, Max: 0.1, Step: 0.01, Type: core.TypeFloat},
		core.Parameter{Name: "maximum", Description: "Maximum acceleration factor", Default: s.maximum, Min: 0.1, Max: 0.5, Step: 0.05, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params to the strategy
func (s *ParabolicSAR) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Float("acceleration", &s.acceleration).Float("maximum", &s.maximum).Err()
}
