package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// AroonCross trades Aroon up crossing Aroon down.
type AroonCross struct {
	base
	period int
}

// NewAroonCross creates a new instance of AroonCross with default parameters
func NewAroonCross() *AroonCross {
	return &AroonCross{base: newBase("4h"), period: 25}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *AroonCross) WarmupPeriod() int {
	return s.period + 5
}

// Indicators calculates and returns the indicators used by this strategy
func (s *AroonCross) Indicators(df *core.Dataframe) []core.ChartIndicator {
	down, up := indicator.Aroon(df.High, df.Low, s.period)
	df.Metadata["aroon_up"] = up
	df.Metadata["aroon_down"] = down

	return []core.ChartIndicator{
		pane(df, "Aroon",
			line("Up", "green", df.Metadata["aroon_up"]),
			line("Down", "red", df.Metadata["aroon_down"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *AroonCross) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	up, down := df.Metadata["aroon_up"], df.Metadata["aroon_down"]
	s.trade(ctx, df, broker, up.Crossover(down), up.Crossunder(down))
}

// GetParameters returns the tunable parameters of AroonCross
func (s *AroonCross) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "Aroon period", Default: s.period, Min: 5, Max: 50, Step: 5, Type: core.TypeInt},
	)
}

// SetParameterValues applies params to the strategy
func (s *AroonCross) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Int("period", &s.period).Err()
}
