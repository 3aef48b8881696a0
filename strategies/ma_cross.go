package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// MACross is the moving average cross with a selectable average kind.
type MACross struct {
	base
	fast   int
	slow   int
	maType string
}

// NewMACross creates a new instance of MACross with default parameters
func NewMACross() *MACross {
	return &MACross{base: newBase("1h"), fast: 9, slow: 26, maType: "ema"}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *MACross) WarmupPeriod() int {
	return lookback(s.slow, s.maType) + 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *MACross) Indicators(df *core.Dataframe) []core.ChartIndicator {
	maType, _ := indicator.ParseMaType(s.maType)
	df.Metadata["fast"] = indicator.MA(df.Close, s.fast, maType)
	df.Metadata["slow"] = indicator.MA(df.Close, s.slow, maType)

	name := strings.ToUpper(s.maType)
	return []core.ChartIndicator{
		overlay(df, "Moving Averages",
			line(fmt.Sprintf("%s %d", name, s.fast), "orange", df.Metadata["fast"]),
			line(fmt.Sprintf("%s %d", name, s.slow), "purple", df.Metadata["slow"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *MACross) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	fast, slow := df.Metadata["fast"], df.Metadata["slow"]
	s.trade(ctx, df, broker, fast.Crossover(slow), fast.Crossunder(slow))
}

// GetParameters returns the tunable parameters of MACross
func (s *MACross) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "fast", Description: "Fast average period", Default: s.fast, Min: 2, Max: 50, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "slow", Description: "Slow average period", Default: s.slow, Min: 5, Max: 200, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "ma_type", Description: "Moving average kind", Default: s.maType, Options: indicator.MaTypeNames(), Type: core.TypeCategorical},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *MACross) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("fast", &s.fast).
		Int("slow", &s.slow).
		String("ma_type", &s.maType).
		Err()
	if err != nil {
		return err
	}

	if _, err := indicator.ParseMaType(s.maType); err != nil {
		return invalidParameter("%v", err)
	}
	if s.fast >= s.slow {
		return invalidParameter("fast %d must be below slow %d", s.fast, s.slow)
	}
	return nil
}
