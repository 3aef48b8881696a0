package strategy

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
)

// Controller feeds the candles of one pair into a strategy.
type Controller struct {
	strategy Strategy
	frames   *DataframeManager
	broker   core.Broker
	log      logger.Logger
	started  bool
}

// NewStrategyController creates a new instance of Controller for one pair.
// Orders are not placed until Start is called.
func NewStrategyController(pair string, strategy Strategy, broker core.Broker, log logger.Logger) *Controller {
	return &Controller{
		strategy: strategy,
		frames:   NewDataframeManager(pair),
		broker:   broker,
		log:      log,
	}
}

// Start enables order placement. Candles seen before Start only warm up indicators.
func (c *Controller) Start() {
	c.started = true
}

// Stop disables order placement. Candles keep updating the dataframe.
func (c *Controller) Stop() {
	c.started = false
}

// Dataframe exposes the full history collected so far.
func (c *Controller) Dataframe() *core.Dataframe {
	return c.frames.Dataframe()
}

// OnPartialCandle forwards in-progress candles to high frequency strategies.
// The partial candle replaces the newest row, or opens a new one, until the
// closed candle of the same period arrives.
func (c *Controller) OnPartialCandle(ctx context.Context, candle core.Candle) {
	hf, ok := c.strategy.(HighFrequencyStrategy)
	if !ok || candle.Complete || !c.frames.Ready(c.strategy.WarmupPeriod()) {
		return
	}

	if c.frames.IsLate(candle) {
		c.log.WithField("pair", candle.Pair).Errorf("late partial candle ignored: %s", candle.Time)
		return
	}

	c.frames.Update(candle)
	sample := c.frames.Sample(c.strategy.WarmupPeriod())
	hf.Indicators(&sample)

	if c.started {
		hf.OnPartialCandle(ctx, &sample, c.broker)
	}
}

// OnCandle appends a closed candle and runs the strategy once warmed up.
func (c *Controller) OnCandle(ctx context.Context, candle core.Candle) {
	if c.frames.IsLate(candle) {
		c.log.WithField("pair", candle.Pair).Errorf("late candle ignored: %s", candle.Time)
		return
	}

	c.frames.Update(candle)

	warmup := c.strategy.WarmupPeriod()
	if !c.frames.Ready(warmup) {
		return
	}

	sample := c.frames.Sample(warmup)
	c.strategy.Indicators(&sample)

	if c.started {
		c.strategy.OnCandle(ctx, &sample, c.broker)
	}
}
