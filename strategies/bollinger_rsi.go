package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// BollingerRSI buys a close under the lower band while RSI is oversold and
// exits at the middle band or once RSI turns overbought. A stop order guards
// every entry.
type BollingerRSI struct {
	base
	period     int
	deviation  float64
	rsiPeriod  int
	oversold   float64
	overbought float64
	stopLoss   float64
	stops      stops
}

// NewBollingerRSI creates a new instance of BollingerRSI with default parameters
func NewBollingerRSI() *BollingerRSI {
	return &BollingerRSI{
		base:       newBase("1h"),
		period:     20,
		deviation:  2,
		rsiPeriod:  14,
		oversold:   35,
		overbought: 70,
		stopLoss:   0.04,
		stops:      make(stops),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *BollingerRSI) WarmupPeriod() int {
	return max(s.period, s.rsiPeriod) * 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *BollingerRSI) Indicators(df *core.Dataframe) []core.ChartIndicator {
	upper, middle, lower := indicator.BB(df.Close, s.period, s.deviation, indicator.TypeSMA)
	df.Metadata["bb_upper"] = upper
	df.Metadata["bb_middle"] = middle
	df.Metadata["bb_lower"] = lower
	df.Metadata["rsi"] = indicator.RSI(df.Close, s.rsiPeriod)

	return []core.ChartIndicator{
		overlay(df, "Bollinger Bands",
			line("Upper", "gray", df.Metadata["bb_upper"]),
			line("Middle", "blue", df.Metadata["bb_middle"]),
			line("Lower", "gray", df.Metadata["bb_lower"]),
		),
		pane(df, "RSI", line("RSI", "purple", df.Metadata["rsi"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *BollingerRSI) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	price := df.Close.Last(0)
	if !h.open() {
		if price < df.Metadata["bb_lower"].Last(0) && df.Metadata["rsi"].Below(s.oversold) {
			if order, ok := s.buy(ctx, df, broker, h); ok {
				s.stops.place(ctx, df, broker, order.Quantity, price*(1-s.stopLoss))
			}
		}
		return
	}

	if price >= df.Metadata["bb_middle"].Last(0) || df.Metadata["rsi"].Above(s.overbought) {
		s.stops.cancel(ctx, df, broker)
		if h, ok = positionOf(ctx, df, broker); ok && h.open() {
			sellAll(ctx, df, broker, h)
		}
	}
}

// GetParameters returns the tunable parameters of BollingerRSI
func (s *BollingerRSI) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "Band period", Default: s.period, Min: 10, Max: 50, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "deviation", Description: "Band width in standard deviations", Default: s.deviation, Min: 1.0, Max: 3.0, Step: 0.5, Type: core.TypeFloat},
		core.Parameter{Name: "rsi_period", Description: "RSI period", Default: s.rsiPeriod, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "RSI entry ceiling", Default: s.oversold, Min: 10.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "overbought", Description: "RSI exit level", Default: s.overbought, Min: 50.0, Max: 95.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "stop_loss", Description: "Stop distance below entry, as a fraction", Default: s.stopLoss, Min: 0.005, Max: 0.2, Step: 0.005, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *BollingerRSI) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("period", &s.period).
		Float("deviation", &s.deviation).
		Int("rsi_period", &s.rsiPeriod).
		Float("oversold", &s.oversold).
		Float("overbought", &s.overbought).
		Float("stop_loss", &s.stopLoss).
		Err()
	if err != nil {
		return err
	}
	if s.oversold >= s.overbought {
		return invalidParameter("oversold %.1f must be below overbought %.1f", s.oversold, s.overbought)
	}
	return nil
}
