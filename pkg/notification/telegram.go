// Package notification sends bot events to people: Telegram chats or email.
package notification

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/order"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

var (
	buyRegexp  = regexp.MustCompile(`/buy\s+(?P<pair>\w+)\s+(?P<amount>\d+(?:\.\d+)?)(?P<percent>%)?`)
	sellRegexp = regexp.MustCompile(`/sell\s+(?P<pair>\w+)\s+(?P<amount>\d+(?:\.\d+)?)(?P<percent>%)?`)
)

// Controller is what the Telegram commands drive. *order.Controller implements it.
type Controller interface {
	Account(ctx context.Context) (core.Account, error)
	Position(ctx context.Context, pair string) (asset, quote float64, err error)
	LastQuote(ctx context.Context, pair string) (float64, error)
	CreateOrderMarket(ctx context.Context, side core.SideType, pair string, size float64) (core.Order, error)
	CreateOrderMarketQuote(ctx context.Context, side core.SideType, pair string, quote float64) (core.Order, error)
	Results() map[string]*order.TradeSummary
	Status() order.Status
	Start(ctx context.Context)
	Stop(ctx context.Context)
}

var _ Controller = (*order.Controller)(nil)

type telegram struct {
	ctx         context.Context
	settings    core.Settings
	controller  Controller
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
}

// NewTelegram connects to the Bot API with the token from settings. Only the
// configured users may issue commands.
func NewTelegram(ctx context.Context, controller Controller, settings core.Settings) (core.NotifierWithStart, error) {
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: 10 * time.Second}

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Telegram.Token,
		Poller:    authorized(poller, settings.Telegram.Users),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	menu.Reply(
		menu.Row(menu.Text("/status"), menu.Text("/balance"), menu.Text("/profit")),
		menu.Row(menu.Text("/start"), menu.Text("/stop"), menu.Text("/buy"), menu.Text("/sell")),
	)

	err = client.SetCommands([]tb.Command{
		{Text: "/help", Description: "Display help instructions"},
		{Text: "/stop", Description: "Stop buy and sell coins"},
		{Text: "/start", Description: "Start buy and sell coins"},
		{Text: "/status", Description: "Check bot status"},
		{Text: "/balance", Description: "Wallet balance"},
		{Text: "/profit", Description: "Summary of last trade results"},
		{Text: "/buy", Description: "Open a buy order"},
		{Text: "/sell", Description: "Open a sell order"},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram commands: %w", err)
	}

	bot := &telegram{
		ctx:         ctx,
		settings:    settings,
		controller:  controller,
		defaultMenu: menu,
		client:      client,
	}

	client.Handle("/help", bot.HelpHandle)
	client.Handle("/start", bot.StartHandle)
	client.Handle("/stop", bot.StopHandle)
	client.Handle("/status", bot.StatusHandle)
	client.Handle("/balance", bot.BalanceHandle)
	client.Handle("/profit", bot.ProfitHandle)
	client.Handle("/buy", bot.BuyHandle)
	client.Handle("/sell", bot.SellHandle)

	return bot, nil
}

// authorized creates a middleware that drops updates from unknown users
func authorized(poller tb.Poller, users []int) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("telegram: update without message sender")
			return false
		}

		if slices.Contains(users, int(u.Message.Sender.ID)) {
			return true
		}

		log.WithField("user", u.Message.Sender.ID).Error("telegram: unauthorized user")
		return false
	})
}

// Start begins the Telegram bot and notifies all authorized users
func (t *telegram) Start() {
	go t.client.Start()
	t.broadcast("Bot initialized.", t.defaultMenu)
}

// Notify sends a message to all authorized users
func (t *telegram) Notify(text string) {
	t.broadcast(text)
}

// broadcast sends a message to all authorized users with additional options
func (t *telegram) broadcast(text string, options ...interface{}) {
	for _, user := range t.settings.Telegram.Users {
		if _, err := t.client.Send(&tb.User{ID: int64(user)}, text, options...); err != nil {
			log.WithError(err).Error("telegram: send notification")
		}
	}
}

// reply sends a message to a specific user
func (t *telegram) reply(to *tb.User, text string, options ...interface{}) {
	if _, err := t.client.Send(to, text, options...); err != nil {
		log.WithError(err).Error("telegram: send message")
	}
}

// BalanceHandle shows the balance of all assets
func (t *telegram) BalanceHandle(m *tb.Message) {
	message, err := balanceMessage(t.ctx, t.controller, t.settings.Pairs)
	if err != nil {
		t.OnError(err)
		return
	}
	t.reply(m.Sender, message)
}

// HelpHandle displays available commands
func (t *telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		t.OnError(err)
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("%s - %s", command.Text, command.Description))
	}
	t.reply(m.Sender, strings.Join(lines, "\n"))
}

// ProfitHandle shows trading results
func (t *telegram) ProfitHandle(m *tb.Message) {
	for _, message := range profitMessages(t.controller.Results()) {
		t.reply(m.Sender, message)
	}
}

// BuyHandle processes buy commands
func (t *telegram) BuyHandle(m *tb.Message) {
	command, ok := parseTradeCommand(buyRegexp, m.Text)
	if !ok {
		t.reply(m.Sender, "Invalid command.\nExamples of usage:\n`/buy BTCUSDT 100`\n\n`/buy BTCUSDT 50%`")
		return
	}

	created, err := executeBuy(t.ctx, t.controller, command)
	if err != nil {
		t.OnError(err)
		return
	}
	log.WithField("pair", created.Pair).Info("telegram: buy order created")
}

// SellHandle processes sell commands
func (t *telegram) SellHandle(m *tb.Message) {
	command, ok := parseTradeCommand(sellRegexp, m.Text)
	if !ok {
		t.reply(m.Sender, "Invalid command.\nExamples of usage:\n`/sell BTCUSDT 100`\n\n`/sell BTCUSDT 50%`")
		return
	}

	created, err := executeSell(t.ctx, t.controller, command)
	if err != nil {
		t.OnError(err)
		return
	}
	log.WithField("pair", created.Pair).Info("telegram: sell order created")
}

// StatusHandle displays the current bot status
func (t *telegram) StatusHandle(m *tb.Message) {
	t.reply(m.Sender, fmt.Sprintf("Status: `%s`", t.controller.Status()))
}

// StartHandle starts the bot operation
func (t *telegram) StartHandle(m *tb.Message) {
	if t.controller.Status() == order.StatusRunning {
		t.reply(m.Sender, "Bot is already running.", t.defaultMenu)
		return
	}

	t.controller.Start(t.ctx)
	t.reply(m.Sender, "Bot started.", t.defaultMenu)
}

// StopHandle stops the bot operation
func (t *telegram) StopHandle(m *tb.Message) {
	if t.controller.Status() == order.StatusStopped {
		t.reply(m.Sender, "Bot is already stopped.", t.defaultMenu)
		return
	}

	t.controller.Stop(t.ctx)
	t.reply(m.Sender, "Bot stopped.", t.defaultMenu)
}

// OnOrder notifies the users of order updates
func (t *telegram) OnOrder(o core.Order) {
	t.Notify(fmt.Sprintf("%s\n-----\n%s", orderTitle(o), o))
}

// OnError notifies the users of an error
func (t *telegram) OnError(err error) {
	t.Notify(errorMessage(err))
}

// tradeCommand is a parsed /buy or /sell message.
type tradeCommand struct {
	Pair    string
	Amount  float64
	Percent bool
}

func parseTradeCommand(pattern *regexp.Regexp, text string) (tradeCommand, bool) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return tradeCommand{}, false
	}

	var command tradeCommand
	for i, name := range pattern.SubexpNames() {
		switch name {
		case "pair":
			command.Pair = strings.ToUpper(match[i])
		case "amount":
			amount, err := strconv.ParseFloat(match[i], 64)
			if err != nil || amount <= 0 {
				return tradeCommand{}, false
			}
			command.Amount = amount
		case "percent":
			command.Percent = match[i] != ""
		}
	}
	return command, true
}

// executeBuy spends Amount quote, or Amount percent of the free quote.
func executeBuy(ctx context.Context, c Controller, command tradeCommand) (core.Order, error) {
	amount := command.Amount
	if command.Percent {
		_, quote, err := c.Position(ctx, command.Pair)
		if err != nil {
			return core.Order{}, fmt.Errorf("position %s: %w", command.Pair, err)
		}
		amount = amount * quote / 100
	}

	return c.CreateOrderMarketQuote(ctx, core.SideTypeBuy, command.Pair, amount)
}

// executeSell sells Amount percent of the held asset, or Amount worth of quote.
func executeSell(ctx context.Context, c Controller, command tradeCommand) (core.Order, error) {
	if !command.Percent {
		return c.CreateOrderMarketQuote(ctx, core.SideTypeSell, command.Pair, command.Amount)
	}

	asset, _, err := c.Position(ctx, command.Pair)
	if err != nil {
		return core.Order{}, fmt.Errorf("position %s: %w", command.Pair, err)
	}
	return c.CreateOrderMarket(ctx, core.SideTypeSell, command.Pair, command.Amount*asset/100)
}

// balanceMessage creates a formatted balance message
func balanceMessage(ctx context.Context, c Controller, pairs []string) (string, error) {
	account, err := c.Account(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("*BALANCE*\n")

	quotes := make(map[string]float64)
	total := 0.0
	for _, pair := range pairs {
		asset, quote := exchange.SplitAssetQuote(pair)
		assetBalance, quoteBalance := account.Balance(asset, quote)

		price, err := c.LastQuote(ctx, pair)
		if err != nil {
			return "", fmt.Errorf("last quote %s: %w", pair, err)
		}

		value := assetBalance.Total() * price
		quotes[quote] = quoteBalance.Total()
		total += value
		fmt.Fprintf(&sb, "%s: `%.4f` ≅ `%.2f` %s\n", asset, assetBalance.Total(), value, quote)
	}

	names := make([]string, 0, len(quotes))
	for quote := range quotes {
		names = append(names, quote)
	}
	sort.Strings(names)
	for _, quote := range names {
		total += quotes[quote]
		fmt.Fprintf(&sb, "%s: `%.4f`\n", quote, quotes[quote])
	}

	fmt.Fprintf(&sb, "-----\nTotal: `%.4f`\n", total)
	return sb.String(), nil
}

func profitMessages(results map[string]*order.TradeSummary) []string {
	if len(results) == 0 {
		return []string{"No trades registered."}
	}

	pairs := make([]string, 0, len(results))
	for pair := range results {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)

	messages := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		messages = append(messages, fmt.Sprintf("*PAIR*: `%s`\n`%s`", pair, results[pair].String()))
	}
	return messages
}

// orderTitle is the headline used for order notifications
func orderTitle(o core.Order) string {
	switch o.Status {
	case core.OrderStatusTypeFilled:
		return fmt.Sprintf("✅ ORDER FILLED - %s", o.Pair)
	case core.OrderStatusTypeNew:
		return fmt.Sprintf("🆕 NEW ORDER - %s", o.Pair)
	case core.OrderStatusTypeCanceled, core.OrderStatusTypeRejected:
		return fmt.Sprintf("❌ ORDER CANCELED / REJECTED - %s", o.Pair)
	}
	return fmt.Sprintf("ORDER %s - %s", o.Status, o.Pair)
}

func errorMessage(err error) string {
	var sb strings.Builder
	sb.WriteString("🛑 ERROR\n-----\n")

	var orderErr *exchange.OrderError
	if errors.As(err, &orderErr) {
		fmt.Fprintf(&sb, "Pair: %s\nQuantity: %.4f\n-----\n", orderErr.Pair, orderErr.Quantity)
		sb.WriteString(orderErr.Err.Error())
		return sb.String()
	}

	sb.WriteString(err.Error())
	return sb.String()
}
