package strategies

import (
	"context"
	"fmt"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// TripleEMA enters when the short, medium and long EMAs line up upwards and
// leaves when the short EMA falls under the medium one. Entries are protected
// by a stop order.
type TripleEMA struct {
	base
	short    int
	medium   int
	long     int
	stopLoss float64
	stops    stops
}

// NewTripleEMA creates a new instance of TripleEMA with default parameters
func NewTripleEMA() *TripleEMA {
	return &TripleEMA{
		base:     newBase("1h"),
		short:    9,
		medium:   21,
		long:     50,
		stopLoss: 0.03,
		stops:    make(stops),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *TripleEMA) WarmupPeriod() int {
	return s.long * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *TripleEMA) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["ema_short"] = indicator.EMA(df.Close, s.short)
	df.Metadata["ema_medium"] = indicator.EMA(df.Close, s.medium)
	df.Metadata["ema_long"] = indicator.EMA(df.Close, s.long)

	return []core.ChartIndicator{
		overlay(df, "Triple EMA",
			line(fmt.Sprintf("EMA %d", s.short), "green", df.Metadata["ema_short"]),
			line(fmt.Sprintf("EMA %d", s.medium), "orange", df.Metadata["ema_medium"]),
			line(fmt.Sprintf("EMA %d", s.long), "red", df.Metadata["ema_long"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *TripleEMA) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	short, medium, long := df.Metadata["ema_short"], df.Metadata["ema_medium"], df.Metadata["ema_long"]

	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	aligned := short.Last(0) > medium.Last(0) && medium.Last(0) > long.Last(0)
	if !h.open() && aligned {
		if order, ok := s.buy(ctx, df, broker, h); ok {
			s.stops.place(ctx, df, broker, order.Quantity, h.price*(1-s.stopLoss))
		}
		return
	}

	if h.open() && short.Crossunder(medium) {
		s.stops.cancel(ctx, df, broker)
		if h, ok = positionOf(ctx, df, broker); ok && h.open() {
			sellAll(ctx, df, broker, h)
		}
	}
}

// GetParameters returns the tunable parameters of TripleEMA
func (s *TripleEMA) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "short", Description: "Short EMA period", Default: s.short, Min: 2, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "medium", Description: "Medium EMA period", Default: s.medium, Min: 5, Max: 60, Step: 2, Type: core.TypeInt},
		core.Parameter{Name: "long", Description: "Long EMA period", Default: s.long, Min: 20, Max: 200, Step: 10, Type: core.TypeInt},
		core.Parameter{Name: "stop_loss", Description: "Stop distance below entry, as a fraction", Default: s.stopLoss, Min: 0.005, Max: 0.2, Step: 0.005, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *TripleEMA) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("short", &s.short).
		Int("medium", &s.medium).
		Int("long", &s.long).
		Float("stop_loss", &s.stopLoss).
		Err()
	if err != nil {
		return err
	}
	if s.short >= s.medium || s.medium >= s.long {
		return invalidParameter("periods must satisfy short < medium < long, got %d %d %d", s.short, s.medium, s.long)
	}
	return nil
}
