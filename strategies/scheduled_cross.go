package strategies

import (
	"context"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
	"github.com/raykavin/stratbook/pkg/strategy"
)

// ScheduledCross arms conditional orders: when flat it arms a buy that fires
// on the next EMA cross while RSI is not overbought, and when holding it arms
// a sell that fires on the opposite cross or an overbought RSI.
type ScheduledCross struct {
	base
	fast       int
	slow       int
	rsiPeriod  int
	overbought float64
	schedulers map[string]*strategy.Scheduler
}

// NewScheduledCross creates a new instance of ScheduledCross with default parameters
func NewScheduledCross() *ScheduledCross {
	return &ScheduledCross{
		base:       newBase("1h"),
		fast:       9,
		slow:       21,
		rsiPeriod:  14,
		overbought: 70,
		schedulers: make(map[string]*strategy.Scheduler),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *ScheduledCross) WarmupPeriod() int {
	return max(s.slow, s.rsiPeriod) * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *ScheduledCross) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["fast"] = indicator.EMA(df.Close, s.fast)
	df.Metadata["slow"] = indicator.EMA(df.Close, s.slow)
	df.Metadata["rsi"] = indicator.RSI(df.Close, s.rsiPeriod)

	return []core.ChartIndicator{
		overlay(df, "EMA",
			line("Fast", "green", df.Metadata["fast"]),
			line("Slow", "red", df.Metadata["slow"]),
		),
		pane(df, "RSI", line("RSI", "purple", df.Metadata["rsi"])),
	}
}

func (s *ScheduledCross) scheduler(pair string) *strategy.Scheduler {
	scheduler, ok := s.schedulers[pair]
	if !ok {
		scheduler = strategy.NewScheduler(pair, stratbook.DefaultLog)
		s.schedulers[pair] = scheduler
	}
	return scheduler
}

// OnCandle is called for each new candle and implements the trading logic
func (s *ScheduledCross) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	scheduler := s.scheduler(df.Pair)
	scheduler.Update(ctx, df, broker)
	if scheduler.Pending() > 0 {
		return
	}

	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	if h.open() {
		scheduler.SellWhen(h.asset, func(df *core.Dataframe) bool {
			return df.Metadata["fast"].Crossunder(df.Metadata["slow"]) || df.Metadata["rsi"].Above(s.overbought)
		})
		return
	}

	if size := h.quote * s.positionSize / h.price; size*h.price >= dustValue {
		scheduler.BuyWhen(size, func(df *core.Dataframe) bool {
			return df.Metadata["fast"].Crossover(df.Metadata["slow"]) && df.Metadata["rsi"].Below(s.overbought)
		})
	}
}

// GetParameters returns the tunable parameters of ScheduledCross
func (s *ScheduledCross) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "fast", Description: "Fast EMA period", Default: s.fast, Min: 2, Max: 50, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "slow", Description: "Slow EMA period", Default: s.slow, Min: 5, Max: 200, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "rsi_period", Description: "RSI period", Default: s.rsiPeriod, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "overbought", Description: "RSI level blocking entries and forcing exits", Default: s.overbought, Min: 50.0, Max: 95.0, Step: 5.0, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *ScheduledCross) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("fast", &s.fast).
		Int("slow", &s.slow).
		Int("rsi_period", &s.rsiPeriod).
		Float("overbought", &s.overbought).
		Err()
	if err != nil {
		return err
	}
	if s.fast >= s.slow {
		return invalidParameter("fast %d must be below slow %d", s.fast, s.slow)
	}
	return nil
}
