package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// Turtle buys a close above the previous entry-period high and sells a close
// below the previous exit-period low.
type Turtle struct {
	base
	entry int
	exit  int
}

// NewTurtle creates a new instance of Turtle with default parameters
func NewTurtle() *Turtle {
	return &Turtle{base: newBase("4h"), entry: 40, exit: 20}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *Turtle) WarmupPeriod() int {
	return s.entry + 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *Turtle) Indicators(df *core.Dataframe) []core.ChartIndicator {
	upper, _, _ := indicator.Donchian(df.High, df.Low, s.entry)
	_, _, lower := indicator.Donchian(df.High, df.Low, s.exit)
	df.Metadata["entry_high"] = upper
	df.Metadata["exit_low"] = lower

	return []core.ChartIndicator{
		overlay(df, "Donchian",
			line("Entry high", "green", df.Metadata["entry_high"]),
			line("Exit low", "red", df.Metadata["exit_low"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *Turtle) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	price := df.Close.Last(0)

	// channels from the previous bar, the current one always lies inside its own
	s.trade(ctx, df, broker,
		price > df.Metadata["entry_high"].Last(1),
		price < df.Metadata["exit_low"].Last(1),
	)
}

// GetParameters returns the tunable parameters of Turtle
func (s *Turtle) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "entry", Description: "Breakout channel period", Default: s.entry, Min: 10, Max: 100, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "exit", Description: "Exit channel period", Default: s.exit, Min: 5, Max: 50, Step: 5, Type: core.TypeInt},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *Turtle) SetParameterValues(params core.ParameterSet) error {
	if err := s.read(params).Int("entry", &s.entry).Int("exit", &s.exit).Err(); err != nil {
		return err
	}
	if s.exit > s.entry {
		return invalidParameter("exit %d must not exceed entry %d", s.exit, s.entry)
	}
	return nil
}
