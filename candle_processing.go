package stratbook

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/schollz/progressbar/v3"
)

// onCandle queues a candle coming from a data feed
func (b *Bot) onCandle(candle core.Candle) {
	b.priorityQueueCandle.Push(candle)
}

// processCandle moves the simulated wallet first, then lets the order
// controller see the fills, and only then runs the strategy on the candle.
func (b *Bot) processCandle(ctx context.Context, candle core.Candle) {
	if b.paperWallet != nil {
		b.paperWallet.OnCandle(candle)
	}

	b.orderController.OnCandle(candle)
	if b.backtest {
		b.orderController.Sync(ctx)
	}

	controller, ok := b.strategiesControllers[candle.Pair]
	if !ok {
		return
	}

	controller.OnPartialCandle(ctx, candle)
	if candle.Complete {
		controller.OnCandle(ctx, candle)
	}
}

// processCandles handles queued candles in time order until ctx is done
func (b *Bot) processCandles(ctx context.Context) {
	items := b.priorityQueueCandle.PopLock()
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-items:
			b.processCandle(ctx, item.(core.Candle))
		}
	}
}

// backtestCandles drains the queue filled from CSV feeds, showing a progress bar
func (b *Bot) backtestCandles(ctx context.Context) {
	b.log.Info("starting backtest")

	bar := progressbar.NewOptions(b.priorityQueueCandle.Len(),
		progressbar.OptionSetWriter(b.progress),
		progressbar.OptionSetDescription("backtesting"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(0),
	)

	for b.priorityQueueCandle.Len() > 0 {
		if ctx.Err() != nil {
			return
		}

		item := b.priorityQueueCandle.Pop()
		b.processCandle(ctx, item.(core.Candle))
		_ = bar.Add(1)
	}
	_ = bar.Finish()
}

// preload warms the strategy up with the last candles of the exchange. Nothing
// is preloaded in backtests, the feed itself provides the warmup.
func (b *Bot) preload(ctx context.Context, pair string) error {
	if b.backtest {
		return nil
	}

	candles, err := b.exchange.CandlesByLimit(ctx, pair, b.strategy.Timeframe(), b.strategy.WarmupPeriod())
	if err != nil {
		return err
	}

	for _, candle := range candles {
		b.processCandle(ctx, candle)
	}

	b.dataFeed.Preload(pair, b.strategy.Timeframe(), candles)
	return nil
}
