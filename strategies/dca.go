package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
)

// DCA buys a fixed quote amount every interval candles and sells everything
// once the close is take_profit above the average entry price.
type DCA struct {
	base
	interval   int
	amount     float64
	takeProfit float64
	maxOrders  int
	plans      map[string]*dcaPlan
}

type dcaPlan struct {
	candles  int
	orders   int
	cost     float64
	quantity float64
}

func (p *dcaPlan) average() float64 {
	if p.quantity == 0 {
		return 0
	}
	return p.cost / p.quantity
}

// NewDCA creates a new instance of DCA with default parameters
func NewDCA() *DCA {
	return &DCA{
		base:       newBase("1d"),
		interval:   7,
		amount:     100,
		takeProfit: 0.1,
		maxOrders:  20,
		plans:      make(map[string]*dcaPlan),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *DCA) WarmupPeriod() int {
	return 2
}

func (s *DCA) plan(pair string) *dcaPlan {
	p, ok := s.plans[pair]
	if !ok {
		p = &dcaPlan{}
		s.plans[pair] = p
	}
	return p
}

// Indicators calculates and returns the indicators used by this strategy
func (s *DCA) Indicators(df *core.Dataframe) []core.ChartIndicator {
	p, ok := s.plans[df.Pair]
	if !ok || p.quantity == 0 {
		return nil
	}

	df.Metadata["average"] = constant(df, p.average())
	return []core.ChartIndicator{
		overlay(df, "DCA", line("Average price", "blue", df.Metadata["average"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *DCA) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	p := s.plan(df.Pair)
	price := df.Close.Last(0)

	if p.quantity > 0 && price >= p.average()*(1+s.takeProfit) {
		h, ok := positionOf(ctx, df, broker)
		if !ok {
			return
		}
		if _, ok := sellAll(ctx, df, broker, h); ok {
			*p = dcaPlan{}
		}
		return
	}

	p.candles++
	if (p.orders > 0 && p.candles < s.interval) || p.orders >= s.maxOrders {
		return
	}

	if order, ok := buyQuote(ctx, df, broker, s.amount); ok {
		p.candles = 0
		p.orders++
		p.cost += order.Price * order.Quantity
		p.quantity += order.Quantity
	}
}

// GetParameters returns the tunable parameters of DCA
func (s *DCA) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "interval", Description: "Candles between purchases", Default: s.interval, Min: 1, Max: 60, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "amount", Description: "Quote spent per purchase", Default: s.amount, Min: 1.0, Max: 10000.0, Step: 10.0, Type: core.TypeFloat},
		core.Parameter{Name: "take_profit", Description: "Exit above the average price, as a fraction", Default: s.takeProfit, Min: 0.01, Max: 1.0, Step: 0.01, Type: core.TypeFloat},
		core.Parameter{Name: "max_orders", Description: "Purchases per cycle", Default: s.maxOrders, Min: 1, Max: 200, Step: 1, Type: core.TypeInt},
	)
}

// SetParameterValues applies params to the strategy
func (s *DCA) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("interval", &s.interval).
		Float("amount", &s.amount).
		Float("take_profit", &s.takeProfit).
		Int("max_orders", &s.maxOrders).
		Err()
	if err != nil {
		return err
	}
	s.plans = make(map[string]*dcaPlan)
	return nil
}
