package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// WilliamsR buys when %R leaves the oversold zone and sells when it leaves
// the overbought zone.
type WilliamsR struct {
	base
	period     int
	oversold   float64
	overbought float64
}

// NewWilliamsR creates a new instance of WilliamsR with default parameters
func NewWilliamsR() *WilliamsR {
	return &WilliamsR{base: newBase("1h"), period: 14, oversold: -80, overbought: -20}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *WilliamsR) WarmupPeriod() int {
	return s.period * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *WilliamsR) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["willr"] = indicator.WilliamsR(df.High, df.Low, df.Close, s.period)

	return []core.ChartIndicator{
		pane(df, "Williams %R", line("%R", "teal", df.Metadata["willr"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *WilliamsR) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	willr := df.Metadata["willr"]
	s.trade(ctx, df, broker, willr.CrossoverLevel(s.oversold), willr.CrossunderLevel(s.overbought))
}

// GetParameters returns the tunable parameters of WilliamsR
func (s *WilliamsR) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "Lookback period", Default: s.period, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "Entry level", Default: s.oversold, Min: -95.0, Max: -50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "overbought", Description: "Exit level", Default: s.overbought, Min: -50.0, Max: -5.0, Step: 5.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *WilliamsR) SetParameterValues(params core.ParameterSet) error {
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
