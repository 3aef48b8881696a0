package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// HeikinAshi buys after a streak of bullish Heikin Ashi candles and sells
// after a streak of bearish ones.
type HeikinAshi struct {
	base
	streak int
}

// NewHeikinAshi creates a new instance of HeikinAshi with default parameters
func NewHeikinAshi() *HeikinAshi {
	return &HeikinAshi{base: newBase("1h"), streak: 3}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *HeikinAshi) WarmupPeriod() int {
	return s.streak + 20
}

// Indicators calculates and returns the indicators used by this strategy
func (s *HeikinAshi) Indicators(df *core.Dataframe) []core.ChartIndicator {
	open, high, low, closing := indicator.HeikinAshi(df.Open, df.High, df.Low, df.Close)
	df.Metadata["ha_open"] = open
	df.Metadata["ha_high"] = high
	df.Metadata["ha_low"] = low
	df.Metadata["ha_close"] = closing

	return []core.ChartIndicator{
		overlay(df, "Heikin Ashi",
			line("HA open", "gray", df.Metadata["ha_open"]),
			line("HA close", "black", df.Metadata["ha_close"]),
		),
	}
}

// run counts how many of the newest Heikin Ashi candles share the direction
// of the newest one, signed by that direction.
func (s *HeikinAshi) run(df *core.Dataframe) int {
	open, closing := df.Metadata["ha_open"], df.Metadata["ha_close"]

	direction := func(i int) int {
		switch {
		case closing.Last(i) > open.Last(i):
			return 1
		case closing.Last(i) < open.Last(i):
			return -1
		}
		return 0
	}

	first := direction(0)
	if first == 0 {
		return 0
	}

	count := 1
	for i := 1; i < len(closing) && direction(i) == first; i++ {
		count++
	}
	return count * first
}

// OnCandle is called for each new candle and implements the trading logic
func (s *HeikinAshi) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	run := s.run(df)
	s.trade(ctx, df, broker, run == s.streak, run == -s.streak)
}

// GetParameters returns the tunable parameters of HeikinAshi
func (s *HeikinAshi) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "streak", Description: "Candles in a row confirming the direction", Default: s.streak, Min: 1, Max: 10, Step: 1, Type: core.TypeInt},
	)
}

// SetParameterValues applies params to the strategy
func (s *HeikinAshi) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).Int("streak", &s.streak).Err()
}
