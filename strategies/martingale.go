package strategies

import (
	"context"
	"math"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
	"github.com/raykavin/stratbook/pkg/strategy"
)

// Martingale takes RSI reversal entries whose quote size grows by multiplier
// after every losing exit and resets after a winning one.
type Martingale struct {
	base
	rsiPeriod  int
	oversold   float64
	overbought float64
	baseQuote  float64
	multiplier float64
	maxSteps   int
	stopLoss   float64

	sizers  map[string]*strategy.Martingale
	entries map[string]float64
}

// NewMartingale creates a new instance of Martingale with default parameters
func NewMartingale() *Martingale {
	return &Martingale{
		base:       newBase("1h"),
		rsiPeriod:  14,
		oversold:   30,
		overbought: 70,
		baseQuote:  50,
		multiplier: 2,
		maxSteps:   4,
		stopLoss:   0.05,
		sizers:     make(map[string]*strategy.Martingale),
		entries:    make(map[string]float64),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *Martingale) WarmupPeriod() int {
	return s.rsiPeriod * 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *Martingale) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["rsi"] = indicator.RSI(df.Close, s.rsiPeriod)

	return []core.ChartIndicator{
		pane(df, "RSI", line("RSI", "purple", df.Metadata["rsi"])),
	}
}

func (s *Martingale) sizer(pair string) *strategy.Martingale {
	m, ok := s.sizers[pair]
	if !ok {
		m = strategy.NewMartingale(s.baseQuote, s.multiplier, s.maxSteps)
		s.sizers[pair] = m
	}
	return m
}

// OnCandle is called for each new candle and implements the trading logic
func (s *Martingale) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	sizer := s.sizer(df.Pair)
	rsi := df.Metadata["rsi"]

	if !h.open() {
		if !rsi.CrossoverLevel(s.oversold) {
			return
		}
		if _, ok := buyQuote(ctx, df, broker, math.Min(sizer.Size(), h.quote*s.positionSize)); ok {
			s.entries[df.Pair] = h.price
		}
		return
	}

	entry, known := s.entries[df.Pair]
	if !known {
		entry = h.price
		s.entries[df.Pair] = entry
	}

	if !rsi.CrossunderLevel(s.overbought) && h.price > entry*(1-s.stopLoss) {
		return
	}

	if _, ok := sellAll(ctx, df, broker, h); !ok {
		return
	}
	delete(s.entries, df.Pair)
	if h.price >= entry {
		sizer.OnWin()
	} else {
		sizer.OnLoss()
	}
}

// GetParameters returns the tunable parameters of Martingale
func (s *Martingale) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "rsi_period", Description: "RSI period", Default: s.rsiPeriod, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "Entry level", Default: s.oversold, Min: 5.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "overbought", Description: "Exit level", Default: s.overbought, Min: 50.0, Max: 95.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "base_quote", Description: "Quote spent on the first entry of a cycle", Default: s.baseQuote, Min: 10.0, Max: 1000.0, Step: 10.0, Type: core.TypeFloat},
		core.Parameter{Name: "multiplier", Description: "Size multiple after each loss", Default: s.multiplier, Min: 1.0, Max: 3.0, Step: 0.25, Type: core.TypeFloat},
		core.Parameter{Name: "max_steps", Description: "Maximum consecutive size increases", Default: s.maxSteps, Min: 0, Max: 10, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "stop_loss", Description: "Exit below entry, as a fraction", Default: s.stopLoss, Min: 0.005, Max: 0.3, Step: 0.005, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *Martingale) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("rsi_period", &s.rsiPeriod).
		Float("oversold", &s.oversold).
		Float("overbought", &s.overbought).
		Float("base_quote", &s.baseQuote).
		Float("multiplier", &s.multiplier).
		Int("max_steps", &s.maxSteps).
		Float("stop_loss", &s.stopLoss).
		Err()
	if err != nil {
		return err
	}
	if s.oversold >= s.overbought {
		return invalidParameter("oversold %.1f must be below overbought %.1f", s.oversold, s.overbought)
	}
	s.sizers = make(map[string]*strategy.Martingale)
	s.entries = make(map[string]float64)
	return nil
}
