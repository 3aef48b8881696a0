package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// QStick trades the average candle body crossing zero.
type QStick struct {
	base
	period int
}

// NewQStick creates a new instance of QStick with default parameters
func NewQStick() *QStick {
	return &QStick{base: newBase("1h"), period: 8}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *QStick) WarmupPeriod() int {
	return s.period * 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *QStick) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["qstick"] = indicator.QStick(df.Open, df.Close, s.period)

	return []core.ChartIndicator{
		pane(df, "QStick",
			core.IndicatorMetric{Name: "QStick", Color: "teal", Style: core.StyleHistogram, Values: df.Metadata["qstick"]},
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *QStick) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	q := df.Metadata["qstick"]
	s.trade(ctx, df, broker, q.CrossoverLevel(0), q.CrossunderLevel(0))
}

// GetParameters returns the tunable parameters of QStick
func (s *QStick) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "Body average period", Default: s.period, Min: 3, Max: 30, Step: 1, Type: core.TypeInt},
	)
}

// SetParameterValues applies params to the strategy
func (s *QStick) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Int("period", &s.period).Err()
}
