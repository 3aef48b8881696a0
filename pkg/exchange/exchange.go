package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/StudioSol/set"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
)

// OrderError is returned by brokers when an order cannot be placed.
type OrderError struct {
	Err      error
	Pair     string
	Quantity float64
}

// Error implements error.
func (o *OrderError) Error() string {
	return fmt.Sprintf("order error %s (%f): %v", o.Pair, o.Quantity, o.Err)
}

// Unwrap returns the underlying cause, so errors.Is matches the core errors
func (o *OrderError) Unwrap() error {
	return o.Err
}

// DataFeed is the pair of channels returned by a candle subscription.
type DataFeed struct {
	Data chan core.Candle
	Err  chan error
}

// DataFeedConsumer receives candles of one pair and timeframe.
type DataFeedConsumer func(core.Candle)

type subscription struct {
	onCandleClose bool
	consumer      DataFeedConsumer
}

// DataFeedSubscription fans out the candle streams of a feeder to every
// consumer subscribed to a pair and timeframe.
type DataFeedSubscription struct {
	feeder        core.Feeder
	feeds         *set.LinkedHashSetString
	dataFeeds     map[string]*DataFeed
	subscriptions map[string][]subscription
	log           logger.Logger
	mu            sync.RWMutex
}

// NewDataFeed creates a new subscription hub over feeder
func NewDataFeed(feeder core.Feeder, log logger.Logger) *DataFeedSubscription {
	return &DataFeedSubscription{
		feeder:        feeder,
		feeds:         set.NewLinkedHashSetString(),
		dataFeeds:     make(map[string]*DataFeed),
		subscriptions: make(map[string][]subscription),
		log:           log,
	}
}

func feedKey(pair, timeframe string) string {
	return fmt.Sprintf("%s--%s", pair, timeframe)
}

func splitFeedKey(key string) (pair, timeframe string) {
	parts := strings.Split(key, "--")
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// Keys lists the subscribed feeds in subscription order.
func (d *DataFeedSubscription) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var keys []string
	for key := range d.feeds.Iter() {
		keys = append(keys, key)
	}
	return keys
}

// Subscribe registers consumer for a pair and timeframe. When onCandleClose is set
// the consumer only sees complete candles.
func (d *DataFeedSubscription) Subscribe(pair, timeframe string, consumer DataFeedConsumer, onCandleClose bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := feedKey(pair, timeframe)
	d.feeds.Add(key)
	d.subscriptions[key] = append(d.subscriptions[key], subscription{
		onCandleClose: onCandleClose,
		consumer:      consumer,
	})
}

// Preload sends historical candles to the consumers of a feed. Partial candles are skipped.
func (d *DataFeedSubscription) Preload(pair, timeframe string, candles []core.Candle) {
	d.mu.RLock()
	subscriptions := d.subscriptions[feedKey(pair, timeframe)]
	d.mu.RUnlock()

	d.log.Infof("preloading %d candles for %s-%s", len(candles), pair, timeframe)
	for _, candle := range candles {
		if !candle.Complete {
			continue
		}
		for _, sub := range subscriptions {
			sub.consumer(candle)
		}
	}
}

// Connect opens one candle subscription per registered feed.
func (d *DataFeedSubscription) Connect(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.log.Info("connecting to the exchange")
	for key := range d.feeds.Iter() {
		pair, timeframe := splitFeedKey(key)
		data, errs := d.feeder.CandlesSubscription(ctx, pair, timeframe)
		d.dataFeeds[key] = &DataFeed{Data: data, Err: errs}
	}
}

// Start connects and dispatches candles until every feed is closed. With loadSync
// the call blocks until then, otherwise it returns right away.
func (d *DataFeedSubscription) Start(ctx context.Context, loadSync bool) {
	d.Connect(ctx)

	var wg sync.WaitGroup
	d.mu.RLock()
	for key, feed := range d.dataFeeds {
		wg.Add(1)
		go func(key string, feed *DataFeed) {
			defer wg.Done()
			d.process(ctx, key, feed)
		}(key, feed)
	}
	d.mu.RUnlock()

	d.log.Info("data feed connected")
	if loadSync {
		wg.Wait()
	}
}

func (d *DataFeedSubscription) process(ctx context.Context, key string, feed *DataFeed) {
	data, errs := feed.Data, feed.Err
	for data != nil || errs != nil {
		select {
		case <-ctx.Done():
			return
		case candle, ok := <-data:
			if !ok {
				data = nil
				continue
			}

			d.mu.RLock()
			subscriptions := d.subscriptions[key]
			d.mu.RUnlock()

			for _, sub := range subscriptions {
				if sub.onCandleClose && !candle.Complete {
					continue
				}
				sub.consumer(candle)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				d.log.WithField("feed", key).Error(err)
			}
		}
	}
}
