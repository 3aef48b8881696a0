package strategies

import (
	"context"
	"fmt"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// EMACross buys when a fast EMA crosses above a slow SMA and sells the whole
// position on the opposite cross.
type EMACross struct {
	base
	emaLength int
	smaLength int
}

// NewEMACross creates a new instance of EMACross with default parameters
func NewEMACross() *EMACross {
	return &EMACross{base: newBase("4h"), emaLength: 8, smaLength: 21}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *EMACross) WarmupPeriod() int {
	return s.smaLength * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *EMACross) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["ema"] = indicator.EMA(df.Close, s.emaLength)
	df.Metadata["sma"] = indicator.SMA(df.Close, s.smaLength)

	return []core.ChartIndicator{
		overlay(df, "Moving Averages",
			line(fmt.Sprintf("EMA %d", s.emaLength), "red", df.Metadata["ema"]),
			line(fmt.Sprintf("SMA %d", s.smaLength), "blue", df.Metadata["sma"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *EMACross) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	ema, sma := df.Metadata["ema"], df.Metadata["sma"]
	s.trade(ctx, df, broker, ema.Crossover(sma), ema.Crossunder(sma))
}

// GetParameters returns the tunable parameters of EMACross
func (s *EMACross) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "ema_length", Description: "Fast EMA period", Default: s.emaLength, Min: 2, Max: 50, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "sma_length", Description: "Slow SMA period", Default: s.smaLength, Min: 5, Max: 200, Step: 5, Type: core.TypeInt},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *EMACross) SetParameterValues(params core.ParameterSet) error {
	if err := s.read(params).Int("ema_length", &s.emaLength).Int("sma_length", &s.smaLength).Err(); err != nil {
		return err
	}
	if s.emaLength >= s.smaLength {
		return invalidParameter("ema_length %d must be below sma_length %d", s.emaLength, s.smaLength)
	}
	return nil
}
