package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// Stochastic trades %K crossing %D inside the oversold and overbought zones.
type Stochastic struct {
	base
	fastK      int
	slowK      int
	slowD      int
	oversold   float64
	overbought float64
}

// NewStochastic creates a new instance of Stochastic with default parameters
func NewStochastic() *Stochastic {
	return &Stochastic{base: newBase("1h"), fastK: 14, slowK: 3, slowD: 3, oversold: 20, overbought: 80}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *Stochastic) WarmupPeriod() int {
	return (s.fastK + s.slowK + s.slowD) * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *Stochastic) Indicators(df *core.Dataframe) []core.ChartIndicator {
	k, d := indicator.Stoch(df.High, df.Low, df.Close, s.fastK, s.slowK, indicator.TypeSMA, s.slowD, indicator.TypeSMA)
	df.Metadata["k"] = k
	df.Metadata["d"] = d

	return []core.ChartIndicator{
		pane(df, "Stochastic",
			line("K", "blue", df.Metadata["k"]),
			line("D", "orange", df.Metadata["d"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *Stochastic) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	k, d := df.Metadata["k"], df.Metadata["d"]
	s.trade(ctx, df, broker,
		k.Crossover(d) && d.Below(s.oversold),
		k.Crossunder(d) && d.Above(s.overbought),
	)
}

// GetParameters returns the tunable parameters of Stochastic
func (s *Stochastic) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "fast_k", Description: "%K lookback", Default: s.fastK, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "slow_k", Description: "%K smoothing", Default: s.slowK, Min: 1, Max: 10, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "slow_d", Description: "%D smoothing", Default: s.slowD, Min: 1, Max: 10, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "Entry zone", Default: s.oversold, Min: 5.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "overbought", Description: "Exit zone", Default: s.overbought, Min: 50.0, Max: 95.0, Step: 5.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *Stochastic) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("fast_k", &s.fastK).
		Int("slow_k", &s.slowK).
		Int("slow_d", &s.slowD).
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
