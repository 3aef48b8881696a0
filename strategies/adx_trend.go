package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// ADXTrend buys +DI crossing above -DI while ADX shows a trend, and sells on
// the opposite cross regardless of ADX.
type ADXTrend struct {
	base
	period    int
	threshold float64
}

// NewADXTrend creates a new instance of ADXTrend with default parameters
func NewADXTrend() *ADXTrend {
	return &ADXTrend{base: newBase("4h"), period: 14, threshold: 25}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *ADXTrend) WarmupPeriod() int {
	return s.period * 4
}

// Indicators calculates and returns the indicators used by this strategy
func (s *ADXTrend) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["adx"] = indicator.ADX(df.High, df.Low, df.Close, s.period)
	df.Metadata["plus_di"] = indicator.PlusDI(df.High, df.Low, df.Close, s.period)
	df.Metadata["minus_di"] = indicator.MinusDI(df.High, df.Low, df.Close, s.period)

	return []core.ChartIndicator{
		pane(df, "ADX",
			line("ADX", "black", df.Metadata["adx"]),
			line("+DI", "green", df.Metadata["plus_di"]),
			line("-DI", "red", df.Metadata["minus_di"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *ADXTrend) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	plus, minus := df.Metadata["plus_di"], df.Metadata["minus_di"]
	trending := df.Metadata["adx"].Above(s.threshold)
	s.trade(ctx, df, broker, trending && plus.Crossover(minus), plus.Crossunder(minus))
}

// GetParameters returns the tunable parameters of ADXTrend
func (s *ADXTrend) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "ADX and DI period", Default: s.period, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "threshold", Description: "Minimum ADX for entries", Default: s.threshold, Min: 10.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params to the strategy
func (s *ADXTrend) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Int("period", &s.period).Float("threshold", &s.threshold).Err()
}
