// Package stratbook wires a strategy to an exchange: it feeds candles to the
// strategy, routes its orders through the order controller and reports results.
package stratbook

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/raykavin/stratbook/pkg/notification"
	"github.com/raykavin/stratbook/pkg/order"
	"github.com/raykavin/stratbook/pkg/storage"
	"github.com/raykavin/stratbook/pkg/strategy"
)

const defaultDatabase = "stratbook.db"

type Bot struct {
	storage  core.OrderStorage
	settings core.Settings
	exchange core.Exchange
	strategy strategy.Strategy
	notifier core.Notifier
	telegram core.NotifierWithStart
	log      logger.Logger
	logLevel string

	orderController     *order.Controller
	priorityQueueCandle *core.PriorityQueue
	orderFeed           *order.Feed
	dataFeed            *exchange.DataFeedSubscription
	paperWallet         *exchange.PaperWallet

	strategiesControllers map[string]*strategy.Controller
	candleSubscribers     []core.CandleSubscriber
	orderSubscribers      []core.OrderSubscriber

	backtest bool
	progress io.Writer
	output   io.Writer
}

// NewBot builds a bot trading settings.Pairs with str on exch. Without
// WithStorage, backtests keep orders in memory and live runs in stratbook.db.
func NewBot(ctx context.Context, settings core.Settings, exch core.Exchange, str strategy.Strategy,
	options ...Option) (*Bot, error) {

	bot := &Bot{
		settings:              settings,
		exchange:              exch,
		strategy:              str,
		log:                   DefaultLog,
		orderFeed:             order.NewOrderFeed(),
		strategiesControllers: make(map[string]*strategy.Controller),
		priorityQueueCandle:   core.NewPriorityQueue(nil),
		progress:              os.Stderr,
		output:                os.Stdout,
	}

	if len(settings.Pairs) == 0 {
		return nil, fmt.Errorf("no pairs to trade")
	}
	for _, pair := range settings.Pairs {
		asset, quote := exchange.SplitAssetQuote(pair)
		if asset == "" || quote == "" {
			return nil, fmt.Errorf("invalid pair: %s", pair)
		}
	}

	for _, option := range options {
		option(bot)
	}

	if bot.logLevel != "" {
		level, ok := logger.ParseLevel(bot.logLevel)
		if !ok {
			return nil, fmt.Errorf("invalid log level: %s", bot.logLevel)
		}
		bot.log.SetLevel(level)
	}

	if bot.storage == nil {
		var err error
		if bot.backtest {
			bot.storage, err = storage.FromMemory()
		} else {
			bot.storage, err = storage.FromFile(defaultDatabase)
		}
		if err != nil {
			return nil, err
		}
	}

	bot.dataFeed = exchange.NewDataFeed(exch, bot.log)
	bot.orderController = order.NewController(exch, bot.storage, bot.orderFeed, bot.log)

	if bot.settings.Telegram.Enabled {
		telegram, err := notification.NewTelegram(ctx, bot.orderController, bot.settings)
		if err != nil {
			return nil, err
		}
		bot.telegram = telegram
		if bot.notifier == nil {
			bot.notifier = telegram
		}
	}

	if bot.notifier != nil {
		bot.orderController.SetNotifier(bot.notifier)
		bot.SubscribeOrder(bot.notifier)
	}
	if bot.telegram != nil && bot.telegram != bot.notifier {
		bot.SubscribeOrder(bot.telegram)
	}
	bot.SubscribeOrder(bot.orderSubscribers...)
	bot.SubscribeCandle(bot.candleSubscribers...)

	return bot, nil
}

// SubscribeOrder sends the orders of every traded pair to the subscribers.
func (b *Bot) SubscribeOrder(subscribers ...core.OrderSubscriber) {
	for _, pair := range b.settings.Pairs {
		for _, subscriber := range subscribers {
			b.orderFeed.Subscribe(pair, subscriber.OnOrder, false)
		}
	}
}

// SubscribeCandle sends the candles of every traded pair to the subscribers.
func (b *Bot) SubscribeCandle(subscribers ...core.CandleSubscriber) {
	for _, pair := range b.settings.Pairs {
		for _, subscriber := range subscribers {
			b.dataFeed.Subscribe(pair, b.strategy.Timeframe(), subscriber.OnCandle, false)
		}
	}
}

// Controller returns the order controller used by the bot
func (b *Bot) Controller() *order.Controller {
	return b.orderController
}

// PaperWallet is the simulated wallet, nil when trading on a real account.
func (b *Bot) PaperWallet() *exchange.PaperWallet {
	return b.paperWallet
}

// StrategyController returns the controller running the strategy for pair.
func (b *Bot) StrategyController(pair string) (*strategy.Controller, bool) {
	controller, ok := b.strategiesControllers[pair]
	return controller, ok
}

// Run warms the strategy up, subscribes to candles and trades until the feed
// ends (backtest) or ctx is cancelled (live).
func (b *Bot) Run(ctx context.Context) error {
	for _, pair := range b.settings.Pairs {
		b.strategiesControllers[pair] = strategy.NewStrategyController(pair, b.strategy, b.orderController, b.log)

		if err := b.preload(ctx, pair); err != nil {
			return fmt.Errorf("preload %s: %w", pair, err)
		}

		b.dataFeed.Subscribe(pair, b.strategy.Timeframe(), b.onCandle, false)
		b.strategiesControllers[pair].Start()
	}

	b.orderFeed.Start()
	defer b.orderFeed.Stop()

	if b.telegram != nil {
		b.telegram.Start()
	}

	if b.backtest {
		b.dataFeed.Start(ctx, true)
		b.backtestCandles(ctx)
		b.orderController.Sync(ctx)
		return ctx.Err()
	}

	b.orderController.Start(ctx)
	defer b.orderController.Stop(ctx)

	b.dataFeed.Start(ctx, false)
	b.processCandles(ctx)
	return nil
}
