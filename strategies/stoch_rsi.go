package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// StochRSI applies the stochastic formula to RSI and trades K/D crosses at
// the extremes.
type StochRSI struct {
	base
	period     int
	fastK      int
	fastD      int
	oversold   float64
	overbought float64
}

// NewStochRSI creates a new instance of StochRSI with default parameters
func NewStochRSI() *StochRSI {
	return &StochRSI{base: newBase("1h"), period: 14, fastK: 5, fastD: 3, oversold: 20, overbought: 80}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *StochRSI) WarmupPeriod() int {
	return (s.period + s.fastK + s.fastD) * 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *StochRSI) Indicators(df *core.Dataframe) []core.ChartIndicator {
	k, d := indicator.StochRSI(df.Close, s.period, s.fastK, s.fastD, indicator.TypeSMA)
	df.Metadata["stoch_rsi_k"] = k
	df.Metadata["stoch_rsi_d"] = d

	return []core.ChartIndicator{
		pane(df, "Stoch RSI",
			line("K", "blue", df.Metadata["stoch_rsi_k"]),
			line("D", "orange", df.Metadata["stoch_rsi_d"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *StochRSI) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	k, d := df.Metadata["stoch_rsi_k"], df.Metadata["stoch_rsi_d"]
	s.trade(ctx, df, broker,
		k.Crossover(d) && k.Below(s.oversold),
		k.Crossunder(d) && k.Above(s.overbought),
	)
}

// GetParameters returns the tunable parameters of StochRSI
func (s *StochRSI) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "RSI period", Default: s.period, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "fast_k", Description: "%K lookback", Default: s.fastK, Min: 2, Max: 20, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "fast_d", Description: "%D smoothing", Default: s.fastD, Min: 1, Max: 10, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "Entry zone", Default: s.oversold, Min: 5.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "overbought", Description: "Exit zone", Default: s.overbought, Min: 50.0, Max: 95.0, Step: 5.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *StochRSI) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("period", &s.period).
		Int("fast_k", &s.fastK).
		Int("fast_d", &s.fastD).
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
