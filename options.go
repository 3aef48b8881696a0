package stratbook

import (
	"io"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
)

type Option func(*Bot)

// WithBacktest replays the exchange feed as fast as possible through the paper
// wallet. Candles are processed strictly in time order across pairs.
func WithBacktest(wallet *exchange.PaperWallet) Option {
	return func(bot *Bot) {
		bot.backtest = true
		bot.paperWallet = wallet
	}
}

// WithPaperWallet simulates fills with wallet while reading live candles.
func WithPaperWallet(wallet *exchange.PaperWallet) Option {
	return func(bot *Bot) {
		bot.paperWallet = wallet
	}
}

// WithStorage sets the order storage used by the bot
func WithStorage(storage core.OrderStorage) Option {
	return func(bot *Bot) {
		bot.storage = storage
	}
}

// WithNotifier reports orders, profits and errors to notifier.
func WithNotifier(notifier core.Notifier) Option {
	return func(bot *Bot) {
		bot.notifier = notifier
	}
}

// WithTelegram enables the Telegram bot for the given token and user ids.
func WithTelegram(token string, users ...int) Option {
	return func(bot *Bot) {
		bot.settings.Telegram = core.TelegramSettings{
			Enabled: true,
			Token:   token,
			Users:   users,
		}
	}
}

// WithCandleSubscription subscribes a consumer to every closed candle
func WithCandleSubscription(subscriber core.CandleSubscriber) Option {
	return func(bot *Bot) {
		bot.candleSubscribers = append(bot.candleSubscribers, subscriber)
	}
}

// WithOrderSubscription subscribes a consumer to every order update
func WithOrderSubscription(subscriber core.OrderSubscriber) Option {
	return func(bot *Bot) {
		bot.orderSubscribers = append(bot.orderSubscribers, subscriber)
	}
}

// WithLogger replaces DefaultLog for this bot and its components.
func WithLogger(log logger.Logger) Option {
	return func(bot *Bot) {
		bot.log = log
	}
}

// WithLogLevel sets the log level by name: trace, debug, info, warn or error.
func WithLogLevel(level string) Option {
	return func(bot *Bot) {
		bot.logLevel = level
	}
}

// WithProgressOutput sets where the backtest progress bar is drawn.
func WithProgressOutput(w io.Writer) Option {
	return func(bot *Bot) {
		bot.progress = w
	}
}

// WithOutput sets where Summary prints, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(bot *Bot) {
		bot.output = w
	}
}
