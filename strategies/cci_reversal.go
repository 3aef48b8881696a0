package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// CCIReversal buys when CCI returns above -level and sells when it returns
// below +level.
type CCIReversal struct {
	base
	period int
	level  float64
}

// NewCCIReversal creates a new instance of CCIReversal with default parameters
func NewCCIReversal() *CCIReversal {
	return &CCIReversal{base: newBase("1h"), period: 20, level: 100}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *CCIReversal) WarmupPeriod() int {
	return s.period * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *CCIReversal) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["cci"] = indicator.CCI(df.High, df.Low, df.Close, s.period)

	return []core.ChartIndicator{
		pane(df, "CCI",
			line("CCI", "brown", df.Metadata["cci"]),
			line("Upper", "red", constant(df, s.level)),
			line("Lower", "green", constant(df, -s.level)),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *CCIReversal) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	cci := df.Metadata["cci"]
	s.trade(ctx, df, broker, cci.CrossoverLevel(-s.level), cci.CrossunderLevel(s.level))
}

// GetParameters returns the tunable parameters of CCIReversal
func (s *CCIReversal) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "CCI period", Default: s.period, Min: 5, Max: 50, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "level", Description: "Distance of the reversal levels from zero", Default: s.level, Min: 50.0, Max: 250.0, Step: 25.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params to the strategy
func (s *CCIReversal) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Int("period", &s.period).Float("level", &s.level).Err()
}
