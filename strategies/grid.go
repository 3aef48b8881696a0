package strategies

import (
	"context"
	"maps"
	"slices"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/strategy"
)

// Grid lays limit buys on a ladder below the price. Every filled buy is sold
// with a limit one spacing above its level, after which the level is bought
// again. When the price leaves the ladder with nothing left to sell, pending
// buys are cancelled and the ladder is rebuilt around the new price.
type Grid struct {
	base
	levels  int
	spacing float64
	ladders map[string]*ladder
}

// ladder is the grid state of one pair. Orders are keyed by level index.
// unsold holds filled buys whose take profit sell was rejected.
type ladder struct {
	grid   *strategy.Grid
	size   map[int]float64
	buys   map[int]core.Order
	sells  map[int]core.Order
	unsold map[int]core.Order
}

// NewGrid creates a new instance of Grid with default parameters
func NewGrid() *Grid {
	return &Grid{base: newBase("15m"), levels: 5, spacing: 0.01, ladders: make(map[string]*ladder)}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *Grid) WarmupPeriod() int {
	return 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *Grid) Indicators(df *core.Dataframe) []core.ChartIndicator {
	l, ok := s.ladders[df.Pair]
	if !ok {
		return nil
	}

	metrics := make([]core.IndicatorMetric, 0, len(l.grid.Prices()))
	for _, price := range l.grid.Prices() {
		metrics = append(metrics, line("Level", "gray", constant(df, price)))
	}
	return []core.ChartIndicator{overlay(df, "Grid", metrics...)}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *Grid) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	price := df.Close.Last(0)

	l, ok := s.ladders[df.Pair]
	if !ok {
		s.anchor(ctx, df, broker, price)
		return
	}

	s.poll(ctx, df, broker, l)

	if !l.grid.Contains(price) && len(l.sells) == 0 && len(l.unsold) == 0 {
		for _, i := range slices.Sorted(maps.Keys(l.buys)) {
			if err := broker.Cancel(ctx, l.buys[i]); err != nil {
				stratbook.DefaultLog.WithField("pair", df.Pair).Error(err)
			}
		}
		s.anchor(ctx, df, broker, price)
	}
}

// anchor builds a ladder around price, splitting positionSize of the quote
// balance evenly over the buy levels.
func (s *Grid) anchor(ctx context.Context, df *core.Dataframe, broker core.Broker, price float64) {
	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	l := &ladder{
		grid:   strategy.NewGrid(price, s.spacing, s.levels),
		size:   make(map[int]float64),
		buys:   make(map[int]core.Order),
		sells:  make(map[int]core.Order),
		unsold: make(map[int]core.Order),
	}
	s.ladders[df.Pair] = l

	buyLevels := l.grid.BuyLevels()
	perLevel := h.quote * s.positionSize / float64(len(buyLevels))
	for i, level := range buyLevels {
		l.size[i] = perLevel / level
		s.placeBuy(ctx, df, broker, l, i)
	}
}

// placeBuy places the limit buy of level i, skipping levels worth less than dust
func (s *Grid) placeBuy(ctx context.Context, df *core.Dataframe, broker core.Broker, l *ladder, i int) {
	level := l.grid.BuyLevels()[i]
	if l.size[i]*level < dustValue {
		return
	}

	order, err := broker.CreateOrderLimit(ctx, core.SideTypeBuy, df.Pair, l.size[i], level)
	if err != nil {
		stratbook.DefaultLog.WithFields(map[string]any{"pair": df.Pair, "level": level}).Error(err)
		return
	}
	l.buys[i] = order
}

// poll moves filled buys to take profit sells and filled sells back to buys.
// A filled buy whose sell is rejected is kept as unsold and retried on the
// next candle.
func (s *Grid) poll(ctx context.Context, df *core.Dataframe, broker core.Broker, l *ladder) {
	for _, i := range slices.Sorted(maps.Keys(l.buys)) {
		current, err := broker.Order(ctx, df.Pair, l.buys[i].ExchangeID)
		if err != nil || current.IsActive() {
			continue
		}
		delete(l.buys, i)
		if current.Status == core.OrderStatusTypeFilled {
			l.unsold[i] = current
		}
	}

	for _, i := range slices.Sorted(maps.Keys(l.unsold)) {
		target := l.grid.TakeProfit(l.grid.BuyLevels()[i])
		sell, err := broker.CreateOrderLimit(ctx, core.SideTypeSell, df.Pair, l.unsold[i].Quantity, target)
		if err != nil {
			stratbook.DefaultLog.WithFields(map[string]any{"pair": df.Pair, "target": target}).Error(err)
			continue
		}
		delete(l.unsold, i)
		l.sells[i] = sell
	}

	for _, i := range slices.Sorted(maps.Keys(l.sells)) {
		current, err := broker.Order(ctx, df.Pair, l.sells[i].ExchangeID)
		if err != nil || current.IsActive() {
			continue
		}
		delete(l.sells, i)
		if current.Status == core.OrderStatusTypeFilled {
			s.placeBuy(ctx, df, broker, l, i)
		}
	}
}

// GetParameters returns the tunable parameters of Grid
func (s *Grid) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "levels", Description: "Levels on each side of the anchor", Default: s.levels, Min: 1, Max: 20, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "spacing", Description: "Distance between levels, as a fraction of the anchor", Default: s.spacing, Min: 0.001, Max: 0.1, Step: 0.001, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *Grid) SetParameterValues(params core.ParameterSet) error {
	if err := s.read(params).Int("levels", &s.levels).Float("spacing", &s.spacing).Err(); err != nil {
		return err
	}
	if s.spacing*float64(s.levels) >= 1 {
		return invalidParameter("levels %d with spacing %.3f reach a zero price", s.levels, s.spacing)
	}
	s.ladders = make(map[string]*ladder)
	return nil
}
