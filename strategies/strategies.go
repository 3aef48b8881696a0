// Package strategies is the catalog of ready made trading rules. Every entry
// is tunable through core.Parameter definitions and registered by Register.
package strategies

import (
	"context"
	"fmt"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/strategy"
)

// dustValue is the quote value under which a holding counts as no position.
const dustValue = 1.0

// base holds the settings shared by the catalog: the candle timeframe and the
// share of the quote balance committed on each entry.
type base struct {
	timeframe    string
	positionSize float64
}

// newBase returns the shared settings with half of the quote balance per entry
func newBase(timeframe string) base {
	return base{timeframe: timeframe, positionSize: 0.5}
}

// Timeframe returns the required timeframe for this strategy
func (b base) Timeframe() string {
	return b.timeframe
}

// parameters prepends the shared parameters to the strategy ones
func (b base) parameters(params ...core.Parameter) []core.Parameter {
	return append([]core.Parameter{
		{
			Name:        "timeframe",
			Description: "Candle timeframe",
			Default:     b.timeframe,
			Type:        core.TypeString,
		},
		{
			Name:        "position_size",
			Description: "Share of the quote balance used per entry",
			Default:     b.positionSize,
			Min:         0.05,
			Max:         1.0,
			Step:        0.05,
			Type:        core.TypeFloat,
		},
	}, params...)
}

// read starts a parameter reader already bound to the shared fields
func (b *base) read(params core.ParameterSet) *strategy.ParamReader {
	return strategy.ReadParams(params).
		String("timeframe", &b.timeframe).
		Float("position_size", &b.positionSize)
}

// holding is the position of one pair at the newest close.
type holding struct {
	asset float64
	quote float64
	price float64
}

// open reports whether the asset held is worth more than dust
func (h holding) open() bool {
	return h.asset*h.price >= dustValue
}

// positionOf fetches the position of the pair, logging failures
func positionOf(ctx context.Context, df *core.Dataframe, broker core.Broker) (holding, bool) {
	asset, quote, err := broker.Position(ctx, df.Pair)
	if err != nil {
		stratbook.DefaultLog.WithField("pair", df.Pair).Error(err)
		return holding{}, false
	}
	return holding{asset: asset, quote: quote, price: df.Close.Last(0)}, true
}

// buy spends positionSize of the quote balance at market.
func (b base) buy(ctx context.Context, df *core.Dataframe, broker core.Broker, h holding) (core.Order, bool) {
	return buyQuote(ctx, df, broker, h.quote*b.positionSize)
}

// buyQuote spends quote at market, ignoring amounts below dust
func buyQuote(ctx context.Context, df *core.Dataframe, broker core.Broker, quote float64) (core.Order, bool) {
	if quote < dustValue {
		return core.Order{}, false
	}

	order, err := broker.CreateOrderMarketQuote(ctx, core.SideTypeBuy, df.Pair, quote)
	if err != nil {
		stratbook.DefaultLog.WithFields(map[string]any{
			"pair":  df.Pair,
			"side":  core.SideTypeBuy,
			"quote": quote,
			"price": df.Close.Last(0),
		}).Error(err)
		return core.Order{}, false
	}
	return order, true
}

// sellAll closes the whole asset position at market.
func sellAll(ctx context.Context, df *core.Dataframe, broker core.Broker, h holding) (core.Order, bool) {
	order, err := broker.CreateOrderMarket(ctx, core.SideTypeSell, df.Pair, h.asset)
	if err != nil {
		stratbook.DefaultLog.WithFields(map[string]any{
			"pair":  df.Pair,
			"side":  core.SideTypeSell,
			"asset": h.asset,
			"price": df.Close.Last(0),
		}).Error(err)
		return core.Order{}, false
	}
	return order, true
}

// trade enters on a buy signal when flat and exits on a sell signal when holding.
func (b base) trade(ctx context.Context, df *core.Dataframe, broker core.Broker, buySignal, sellSignal bool) {
	if !buySignal && !sellSignal {
		return
	}

	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	switch {
	case buySignal && !h.open():
		b.buy(ctx, df, broker, h)
	case sellSignal && h.open():
		sellAll(ctx, df, broker, h)
	}
}

// line is a line metric of a chart group
func line(name, color string, values core.Series[float64]) core.IndicatorMetric {
	return core.IndicatorMetric{Name: name, Color: color, Style: core.StyleLine, Values: values}
}

func overlay(df *core.Dataframe, group string, metrics ...core.IndicatorMetric) core.ChartIndicator {
	return core.ChartIndicator{Overlay: true, GroupName: group, Time: df.Time, Metrics: metrics}
}

func pane(df *core.Dataframe, group string, metrics ...core.IndicatorMetric) core.ChartIndicator {
	return core.ChartIndicator{GroupName: group, Time: df.Time, Metrics: metrics}
}

// constant builds a series holding value on every row of df, for chart levels.
func constant(df *core.Dataframe, value float64) core.Series[float64] {
	out := make(core.Series[float64], len(df.Close))
	for i := range out {
		out[i] = value
	}
	return out
}

func invalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{core.ErrInvalidParameter}, args...)...)
}

// stops tracks the protective stop order placed for each pair.
type stops map[string]core.Order

// place protects quantity with a stop sell at price.
func (s stops) place(ctx context.Context, df *core.Dataframe, broker core.Broker, quantity, price float64) {
	order, err := broker.CreateOrderStop(ctx, df.Pair, quantity, price)
	if err != nil {
		stratbook.DefaultLog.WithFields(map[string]any{
			"pair":  df.Pair,
			"stop":  price,
			"asset": quantity,
		}).Error(err)
		return
	}
	s[df.Pair] = order
}

// cancel removes the stop of the pair if it is still pending.
func (s stops) cancel(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	order, ok := s[df.Pair]
	if !ok {
		return
	}
	delete(s, df.Pair)

	current, err := broker.Order(ctx, df.Pair, order.ExchangeID)
	if err != nil || !current.IsActive() {
		return
	}
	if err := broker.Cancel(ctx, current); err != nil {
		stratbook.DefaultLog.WithField("pair", df.Pair).Error(err)
	}
}

// lookback is the number of rows a moving average of the given kind needs
// before its output is meaningful.
func lookback(period int, maType string) int {
	switch maType {
	case "dema":
		return 2 * period
	case "tema":
		return 3 * period
	case "t3":
		return 6 * period
	case "kama", "trima":
		return period + 1
	}
	return period
}
