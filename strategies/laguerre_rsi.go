package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// LaguerreRSI trades the Laguerre filtered RSI, which lives in [0, 1].
type LaguerreRSI struct {
	base
	gamma float64
	low   float64
	high  float64
}

// NewLaguerreRSI creates a new instance of LaguerreRSI with default parameters
func NewLaguerreRSI() *LaguerreRSI {
	return &LaguerreRSI{base: newBase("1h"), gamma: 0.5, low: 0.2, high: 0.8}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *LaguerreRSI) WarmupPeriod() int {
	return 60
}

// Indicators calculates and returns the indicators used by this strategy
func (s *LaguerreRSI) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["laguerre"] = indicator.LaguerreRSI(df.Close, s.gamma)

	return []core.ChartIndicator{
		pane(df, "Laguerre RSI", line("LRSI", "purple", df.Metadata["laguerre"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *LaguerreRSI) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	lrsi := df.Metadata["laguerre"]
	s.trade(ctx, df, broker, lrsi.CrossoverLevel(s.low), lrsi.CrossunderLevel(s.high))
}

// GetParameters returns the tunable parameters of LaguerreRSI
func (s *LaguerreRSI) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "gamma", Description: "Filter damping", Default: s.gamma, Min: 0.1, Max: 0.9, Step: 0.1, Type: core.TypeFloat},
		core.Parameter{Name: "low", Description: "Entry level", Default: s.low, Min: 0.05, Max: 0.5, Step: 0.05, Type: core.TypeFloat},
		core.Parameter{Name: "high", Description: "Exit level", Default: s.high, Min: 0.5, Max: 0.95, Step: 0.05, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *LaguerreRSI) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Float("gamma", &s.gamma).
		Float("low", &s.low).
		Float("high", &s.high).
		Err()
	if err != nil {
		return err
	}
	if s.low >= s.high {
		return invalidParameter("low %.2f must be below high %.2f", s.low, s.high)
	}
	return nil
}
