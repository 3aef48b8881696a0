package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// MFIThreshold is RSIThreshold on the volume weighted money flow index.
type MFIThreshold struct {
	base
	period     int
	oversold   float64
	overbought float64
}

// NewMFIThreshold creates a new instance of MFIThreshold with default parameters
func NewMFIThreshold() *MFIThreshold {
	return &MFIThreshold{base: newBase("1h"), period: 14, oversold: 20, overbought: 80}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *MFIThreshold) WarmupPeriod() int {
	return s.period * 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *MFIThreshold) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["mfi"] = indicator.MFI(df.High, df.Low, df.Close, df.Volume, s.period)

	return []core.ChartIndicator{
		pane(df, "MFI", line("MFI", "navy", df.Metadata["mfi"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *MFIThreshold) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	mfi := df.Metadata["mfi"]
	s.trade(ctx, df, broker, mfi.CrossoverLevel(s.oversold), mfi.CrossunderLevel(s.overbought))
}

// GetParameters returns the tunable parameters of MFIThreshold
func (s *MFIThreshold) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "MFI period", Default: s.period, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "Entry level", Default: s.oversold, Min: 5.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "overbought", Description: "Exit level", Default: s.overbought, Min: 50.0, Max: 95.0, Step: 5.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *MFIThreshold) SetParameterValues(params core.ParameterSet) error {
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
