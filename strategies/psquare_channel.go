package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// PSquareChannel keeps streaming estimates of a low and a high percentile of
// the close for every pair. A close under the low percentile is bought and a
// close over the high percentile is sold.
type PSquareChannel struct {
	base
	lower    float64
	upper    float64
	seed     int
	channels map[string]*quantileChannel
}

type quantileChannel struct {
	lower *indicator.PSquare
	upper *indicator.PSquare
}

func (c *quantileChannel) add(price float64) {
	c.lower.Add(price)
	c.upper.Add(price)
}

// NewPSquareChannel creates a new instance of PSquareChannel with default parameters
func NewPSquareChannel() *PSquareChannel {
	return &PSquareChannel{
		base:     newBase("1h"),
		lower:    0.1,
		upper:    0.9,
		seed:     50,
		channels: make(map[string]*quantileChannel),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *PSquareChannel) WarmupPeriod() int {
	return s.seed + 1
}

// Indicators calculates and returns the indicators used by this strategy
func (s *PSquareChannel) Indicators(df *core.Dataframe) []core.ChartIndicator {
	channel, ok := s.channels[df.Pair]
	if !ok {
		return nil
	}

	df.Metadata["p_low"] = constant(df, channel.lower.Value())
	df.Metadata["p_high"] = constant(df, channel.upper.Value())

	return []core.ChartIndicator{
		overlay(df, "Quantile Channel",
			line("Low", "green", df.Metadata["p_low"]),
			line("High", "red", df.Metadata["p_high"]),
		),
	}
}

// channel returns the estimators of the pair, seeding new ones with every
// close of the sample but the newest.
func (s *PSquareChannel) channel(df *core.Dataframe) *quantileChannel {
	if channel, ok := s.channels[df.Pair]; ok {
		return channel
	}

	channel := &quantileChannel{lower: indicator.NewPSquare(s.lower), upper: indicator.NewPSquare(s.upper)}
	for _, price := range df.Close[:len(df.Close)-1] {
		channel.add(price)
	}
	s.channels[df.Pair] = channel
	return channel
}

// OnCandle is called for each new candle and implements the trading logic
func (s *PSquareChannel) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	channel := s.channel(df)
	price := df.Close.Last(0)

	// compare against the estimates before they absorb the current close
	s.trade(ctx, df, broker, price < channel.lower.Value(), price > channel.upper.Value())
	channel.add(price)
}

// GetParameters returns the tunable parameters of PSquareChannel
func (s *PSquareChannel) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "lower", Description: "Entry percentile", Default: s.lower, Min: 0.01, Max: 0.45, Step: 0.01, Type: core.TypeFloat},
		core.Parameter{Name: "upper", Description: "Exit percentile", Default: s.upper, Min: 0.55, Max: 0.99, Step: 0.01, Type: core.TypeFloat},
		core.Parameter{Name: "seed", Description: "Closes used to seed the estimators", Default: s.seed, Min: 5, Max: 500, Step: 25, Type: core.TypeInt},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *PSquareChannel) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Float("lower", &s.lower).
		Float("upper", &s.upper).
		Int("seed", &s.seed).
		Err()
	if err != nil {
		return err
	}
	if s.lower >= s.upper {
		return invalidParameter("lower %.2f must be below upper %.2f", s.lower, s.upper)
	}
	s.channels = make(map[string]*quantileChannel)
	return nil
}
