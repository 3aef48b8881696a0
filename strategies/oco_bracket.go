package strategies

import (
	"context"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// OCOBracket buys on an oversold stochastic cross and immediately brackets
// the position with a take profit and a stop loss in one OCO order.
type OCOBracket struct {
	base
	fastK      int
	slowD      int
	oversold   float64
	takeProfit float64
	stopLoss   float64
	brackets   map[string]core.Order
}

// NewOCOBracket creates a new instance of OCOBracket with default parameters
func NewOCOBracket() *OCOBracket {
	return &OCOBracket{
		base:       newBase("1h"),
		fastK:      14,
		slowD:      3,
		oversold:   20,
		takeProfit: 0.04,
		stopLoss:   0.02,
		brackets:   make(map[string]core.Order),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *OCOBracket) WarmupPeriod() int {
	return (s.fastK + s.slowD*2) * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *OCOBracket) Indicators(df *core.Dataframe) []core.ChartIndicator {
	k, d := indicator.Stoch(df.High, df.Low, df.Close, s.fastK, s.slowD, indicator.TypeSMA, s.slowD, indicator.TypeSMA)
	df.Metadata["k"] = k
	df.Metadata["d"] = d

	return []core.ChartIndicator{
		pane(df, "Stochastic",
			line("K", "blue", df.Metadata["k"]),
			line("D", "orange", df.Metadata["d"]),
		),
	}
}

// bracketActive reports whether the OCO of the pair is still pending.
func (s *OCOBracket) bracketActive(ctx context.Context, df *core.Dataframe, broker core.Broker) bool {
	leg, ok := s.brackets[df.Pair]
	if !ok {
		return false
	}

	current, err := broker.Order(ctx, df.Pair, leg.ExchangeID)
	if err == nil && current.IsActive() {
		return true
	}
	delete(s.brackets, df.Pair)
	return false
}

// OnCandle is called for each new candle and implements the trading logic
func (s *OCOBracket) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	if s.bracketActive(ctx, df, broker) {
		return
	}

	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	if h.open() {
		// an unprotected position, left by a rejected bracket
		sellAll(ctx, df, broker, h)
		return
	}

	k, d := df.Metadata["k"], df.Metadata["d"]
	if !k.Crossover(d) || !d.Below(s.oversold) {
		return
	}

	order, ok := s.buy(ctx, df, broker, h)
	if !ok {
		return
	}

	stop := h.price * (1 - s.stopLoss)
	orders, err := broker.CreateOrderOCO(ctx, core.SideTypeSell, df.Pair, order.Quantity,
		h.price*(1+s.takeProfit), stop, stop)
	if err != nil {
		stratbook.DefaultLog.WithFields(map[string]any{
			"pair":        df.Pair,
			"take_profit": h.price * (1 + s.takeProfit),
			"stop":        stop,
		}).Error(err)
		return
	}
	s.brackets[df.Pair] = orders[0]
}

// GetParameters returns the tunable parameters of OCOBracket
func (s *OCOBracket) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "fast_k", Description: "%K lookback", Default: s.fastK, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "slow_d", Description: "%K and %D smoothing", Default: s.slowD, Min: 1, Max: 10, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "oversold", Description: "Entry zone", Default: s.oversold, Min: 5.0, Max: 50.0, Step: 5.0, Type: core.TypeFloat},
		core.Parameter{Name: "take_profit", Description: "Take profit above entry, as a fraction", Default: s.takeProfit, Min: 0.005, Max: 0.3, Step: 0.005, Type: core.TypeFloat},
		core.Parameter{Name: "stop_loss", Description: "Stop loss below entry, as a fraction", Default: s.stopLoss, Min: 0.005, Max: 0.2, Step: 0.005, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params to the strategy
func (s *OCOBracket) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).
		Int("fast_k", &s.fastK).
		Int("slow_d", &s.slowD).
		Float("oversold", &s.oversold).
		Float("take_profit", &s.takeProfit).
		Float("stop_loss", &s.stopLoss).
		Err()
}
