package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// RSIThreshold buys when RSI climbs back over the oversold level and sells
// when it falls back under the overbought level.
type RSIThreshold struct {
	base
	period     int
	oversold   float64
	overbought float64
}

// NewRSIThreshold creates a new instance of RSIThreshold with default parameters
func NewRSIThreshold() *RSIThreshold {
	return &RSIThreshold{base: newBase("1h"), period: 14, oversold: 30, overbought: 70}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *RSIThreshold) WarmupPeriod() int {
	return s.period * 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *RSIThreshold) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["rsi"] = indicator.RSI(df.Close, s.period)

	return []core.ChartIndicator{
		pane(df, "RSI",
			line("RSI", "purple", df.Metadata["rsi"]),
			line("Oversold", "green", constant(df, s.oversold)),
			line("Overbought", "red", constant(df, s.overbought)),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *RSIThreshold) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	rsi := df.Metadata["rsi"]
	s.trade(ctx, df, broker, rsi.CrossoverLevel(s.oversold), rsi.CrossunderLevel(s.overbought))
}

// GetParameters returns the tunable parameters of RSIThreshold
func (s *RSIThreshold) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "RSI period", Default: s.period, Min: 2, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "Entry level", Default: s.oversold, Min: 5.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "overbought", Description: "Exit level", Default: s.overbought, Min: 50.0, Max: 95.0, Step: 5.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *RSIThreshold) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("period", &s.period).
		Float("oversold", &s.oversold).
		Float("overbought", &s.overbought).
		Err()
	if err != nil {
		return err
	}
	if s.oversold >= s.overbought {
		return invalidParameter("oversold %.1f must be below overbought %.1f", s.oversold, s.overbought)
	}
	return nil
}
