package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusError   Status = "error"
)

var _ core.Broker = (*Controller)(nil)

// Controller is the broker strategies trade through. It forwards orders to the
// exchange, stores them, follows their status and keeps per pair trade results.
type Controller struct {
	exchange  core.Exchange
	storage   core.OrderStorage
	orderFeed *Feed
	notifier  core.Notifier
	log       logger.Logger

	mu        sync.Mutex
	results   map[string]*TradeSummary
	position  map[string]*Position
	lastPrice map[string]float64

	statusMu       sync.RWMutex
	status         Status
	tickerInterval time.Duration
	finish         chan struct{}
	done           chan struct{}
}

// NewController creates a new order controller
func NewController(exch core.Exchange, storage core.OrderStorage, orderFeed *Feed, log logger.Logger) *Controller {
	return &Controller{
		exchange:       exch,
		storage:        storage,
		orderFeed:      orderFeed,
		log:            log,
		results:        make(map[string]*TradeSummary),
		position:       make(map[string]*Position),
		lastPrice:      make(map[string]float64),
		status:         StatusStopped,
		tickerInterval: time.Second,
	}
}

// SetNotifier configures a notifier for the controller
func (c *Controller) SetNotifier(notifier core.Notifier) {
	c.notifier = notifier
}

// SetTickerInterval changes how often Start polls pending orders.
func (c *Controller) SetTickerInterval(interval time.Duration) {
	c.tickerInterval = interval
}

// OnCandle updates the last known price for a trading pair
func (c *Controller) OnCandle(candle core.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPrice[candle.Pair] = candle.Close
}

// Status returns the current controller status
func (c *Controller) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}

// setStatus changes the controller status
func (c *Controller) setStatus(status Status) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status = status
}

// Results returns a copy of the trade summaries, keyed by pair.
func (c *Controller) Results() map[string]*TradeSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make(map[string]*TradeSummary, len(c.results))
	for pair, summary := range c.results {
		clone := *summary
		clone.Trades = append([]TradeResult(nil), summary.Trades...)
		results[pair] = &clone
	}
	return results
}

// Pairs lists the pairs with trade results, sorted.
func (c *Controller) Pairs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	pairs := make([]string, 0, len(c.results))
	for pair := range c.results {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}

// Start polls pending orders every tick until Stop is called.
func (c *Controller) Start(ctx context.Context) {
	if c.Status() == StatusRunning {
		return
	}

	c.setStatus(StatusRunning)
	c.finish = make(chan struct{})
	c.done = make(chan struct{})

	go func(finish, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(c.tickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Sync(ctx)
			case <-finish:
				return
			case <-ctx.Done():
				return
			}
		}
	}(c.finish, c.done)

	c.log.Info("order controller started")
}

// Stop syncs pending orders a last time and stops polling.
func (c *Controller) Stop(ctx context.Context) {
	if c.Status() != StatusRunning {
		return
	}

	close(c.finish)
	<-c.done
	c.Sync(ctx)
	c.setStatus(StatusStopped)
	c.log.Info("order controller stopped")
}

// Account retrieves the current trading account information
func (c *Controller) Account(ctx context.Context) (core.Account, error) {
	return c.exchange.Account(ctx)
}

// Position retrieves the current asset and quote balances for a trading pair
func (c *Controller) Position(ctx context.Context, pair string) (asset, quote float64, err error) {
	return c.exchange.Position(ctx, pair)
}

// LastQuote retrieves the most recent price for a trading pair
func (c *Controller) LastQuote(ctx context.Context, pair string) (float64, error) {
	return c.exchange.LastQuote(ctx, pair)
}

// PositionValue is the asset held for pair valued at the last candle close.
func (c *Controller) PositionValue(ctx context.Context, pair string) (float64, error) {
	asset, _, err := c.exchange.Position(ctx, pair)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return asset * c.lastPrice[pair], nil
}

// Order retrieves information about a specific order
func (c *Controller) Order(ctx context.Context, pair string, id int64) (core.Order, error) {
	return c.exchange.Order(ctx, pair, id)
}

// Orders returns the stored orders matching every filter.
func (c *Controller) Orders(filters ...core.OrderFilter) ([]*core.Order, error) {
	return c.storage.Orders(filters...)
}

// CreateOrderOCO creates a One-Cancels-the-Other order pair
func (c *Controller) CreateOrderOCO(ctx context.Context, side core.SideType, pair string,
	size, price, stop, stopLimit float64) ([]core.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Infof("creating OCO %s order for %s", side, pair)
	orders, err := c.exchange.CreateOrderOCO(ctx, side, pair, size, price, stop, stopLimit)
	if err != nil {
		c.notifyError(err)
		return nil, err
	}

	for i := range orders {
		if err := c.storage.CreateOrder(&orders[i]); err != nil {
			c.notifyError(err)
			return nil, err
		}
		c.orderFeed.Publish(orders[i], true)
	}
	return orders, nil
}

// CreateOrderLimit creates a limit order
func (c *Controller) CreateOrderLimit(ctx context.Context, side core.SideType, pair string, size, limit float64) (core.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Infof("creating LIMIT %s order for %s", side, pair)
	order, err := c.exchange.CreateOrderLimit(ctx, side, pair, size, limit)
	return c.register(order, err)
}

// CreateOrderMarket creates a market order with a specified size
func (c *Controller) CreateOrderMarket(ctx context.Context, side core.SideType, pair string, size float64) (core.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Infof("creating MARKET %s order for %s", side, pair)
	order, err := c.exchange.CreateOrderMarket(ctx, side, pair, size)
	return c.register(order, err)
}

// CreateOrderMarketQuote creates a market order with a specified quote amount
func (c *Controller) CreateOrderMarketQuote(ctx context.Context, side core.SideType, pair string, quote float64) (core.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Infof("creating MARKET %s order for %s", side, pair)
	order, err := c.exchange.CreateOrderMarketQuote(ctx, side, pair, quote)
	return c.register(order, err)
}

// CreateOrderStop creates a stop loss order
func (c *Controller) CreateOrderStop(ctx context.Context, pair string, size, limit float64) (core.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Infof("creating STOP order for %s", pair)
	order, err := c.exchange.CreateOrderStop(ctx, pair, size, limit)
	return c.register(order, err)
}

// register stores a freshly created order. The caller holds c.mu.
func (c *Controller) register(order core.Order, err error) (core.Order, error) {
	if err != nil {
		c.notifyError(err)
		return core.Order{}, err
	}

	if err := c.storage.CreateOrder(&order); err != nil {
		c.notifyError(err)
		return core.Order{}, err
	}

	c.processTrade(&order)
	c.orderFeed.Publish(order, true)
	c.log.Infof("[ORDER CREATED] %s", order)
	return order, nil
}

// Cancel cancels an existing order
func (c *Controller) Cancel(ctx context.Context, order core.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Infof("cancelling order %d for %s", order.ExchangeID, order.Pair)
	if err := c.exchange.Cancel(ctx, order); err != nil {
		return err
	}

	order.Status = core.OrderStatusTypePendingCancel
	if err := c.storage.UpdateOrder(&order); err != nil {
		c.notifyError(err)
		return err
	}
	c.log.Infof("[ORDER CANCELED] %s", order)
	return nil
}

// Sync asks the exchange for the status of every pending order and applies
// the changes, recording a trade whenever an order filled.
func (c *Controller) Sync(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	orders, err := c.storage.Orders(core.WithStatusIn(
		core.OrderStatusTypeNew,
		core.OrderStatusTypePartiallyFilled,
		core.OrderStatusTypePendingCancel,
	))
	if err != nil {
		c.setStatus(StatusError)
		c.notifyError(err)
		return
	}

	var updated []core.Order
	for _, order := range orders {
		excOrder, err := c.exchange.Order(ctx, order.Pair, order.ExchangeID)
		if err != nil {
			c.log.WithField("id", order.ExchangeID).Error("sync order: ", err)
			continue
		}
		if excOrder.Status == order.Status {
			continue
		}

		excOrder.ID = order.ID
		if err := c.storage.UpdateOrder(&excOrder); err != nil {
			c.notifyError(err)
			continue
		}

		c.log.Infof("[ORDER %s] %s", excOrder.Status, excOrder)
		updated = append(updated, excOrder)
	}

	// older fills first so positions evolve in trading order
	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].UpdatedAt.Before(updated[j].UpdatedAt)
	})
	for i := range updated {
		c.processTrade(&updated[i])
		c.orderFeed.Publish(updated[i], false)
	}
}

// processTrade updates volume, position and results with a filled order.
// The caller holds c.mu.
func (c *Controller) processTrade(order *core.Order) {
	if order.Status != core.OrderStatusTypeFilled {
		return
	}

	if _, ok := c.results[order.Pair]; !ok {
		c.results[order.Pair] = &TradeSummary{Pair: order.Pair}
	}
	c.results[order.Pair].Volume += order.Price * order.Quantity

	position, ok := c.position[order.Pair]
	if !ok {
		c.position[order.Pair] = &Position{
			AvgPrice:  executionPrice(order),
			Quantity:  order.Quantity,
			CreatedAt: order.CreatedAt,
			Side:      order.Side,
		}
		return
	}

	result, closed := position.Update(order)
	if closed {
		delete(c.position, order.Pair)
	}
	if result != nil {
		c.results[order.Pair].Add(*result)

		_, quote := exchange.SplitAssetQuote(order.Pair)
		c.notify(fmt.Sprintf("[PROFIT] %f %s (%f %%)", result.ProfitValue, quote, result.ProfitPercent*100))
	}
}

// notify sends a message through the logging system and notifier
func (c *Controller) notify(message string) {
	c.log.Info(message)
	if c.notifier != nil {
		c.notifier.Notify(message)
	}
}

// notifyError sends an error through the logging system and notifier
func (c *Controller) notifyError(err error) {
	c.log.Error(err)
	if c.notifier != nil {
		c.notifier.OnError(err)
	}
}
