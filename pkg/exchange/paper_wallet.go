package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
)

var ErrNoFeeder = errors.New("paper wallet has no data feed")

// AssetValue is a point of a value history.
type AssetValue struct {
	Time  time.Time
	Value float64
}

type assetBalance struct {
	Free float64
	Lock float64
}

// balanceEpsilon is the relative tolerance used when an amount is compared
// with a balance built up by float arithmetic.
const balanceEpsilon = 1e-9

// cover returns the part of amount the free balance can pay for. An amount
// above the balance by less than balanceEpsilon is clamped to the balance.
func (b *assetBalance) cover(amount float64) (float64, bool) {
	if b.Free >= amount {
		return amount, true
	}
	if b.Free > 0 && amount-b.Free <= balanceEpsilon*amount {
		return b.Free, true
	}
	return 0, false
}

// settle drops the rounding residue left below zero after a fill.
func (b *assetBalance) settle() {
	b.Free = math.Max(b.Free, 0)
	b.Lock = math.Max(b.Lock, 0)
}

// reservation is what a pending order (or OCO group) holds locked.
type reservation struct {
	asset  string
	amount float64
}

// PaperWallet is a simulated spot account. Market orders fill at the last close;
// limit and stop orders wait for OnCandle to see their price traded.
type PaperWallet struct {
	mu sync.RWMutex

	baseCoin     string
	takerFee     float64
	makerFee     float64
	initialValue float64
	counter      atomic.Int64
	feeder       core.Feeder
	log          logger.Logger

	orders       []core.Order
	reservations map[int64]reservation
	assets       map[string]*assetBalance
	avgPrice     map[string]float64
	volume       map[string]float64

	lastCandle  map[string]core.Candle
	firstCandle map[string]core.Candle

	assetValues  map[string][]AssetValue
	equityValues []AssetValue
}

type PaperWalletOption func(*PaperWallet)

// WithPaperAsset sets the starting free balance of an asset.
func WithPaperAsset(asset string, amount float64) PaperWalletOption {
	return func(wallet *PaperWallet) {
		wallet.assets[asset] = &assetBalance{Free: amount}
	}
}

// WithPaperFee sets maker and taker fees as fractions, e.g. 0.001 for 0.1%.
func WithPaperFee(maker, taker float64) PaperWalletOption {
	return func(wallet *PaperWallet) {
		wallet.makerFee = maker
		wallet.takerFee = taker
	}
}

// WithDataFeed makes the wallet usable as a full core.Exchange.
func WithDataFeed(feeder core.Feeder) PaperWalletOption {
	return func(wallet *PaperWallet) {
		wallet.feeder = feeder
	}
}

// NewPaperWallet creates a new simulated wallet valued in baseCoin
func NewPaperWallet(baseCoin string, log logger.Logger, options ...PaperWalletOption) *PaperWallet {
	wallet := &PaperWallet{
		baseCoin:     baseCoin,
		log:          log,
		reservations: make(map[int64]reservation),
		assets:       make(map[string]*assetBalance),
		avgPrice:     make(map[string]float64),
		volume:       make(map[string]float64),
		lastCandle:   make(map[string]core.Candle),
		firstCandle:  make(map[string]core.Candle),
		assetValues:  make(map[string][]AssetValue),
	}

	for _, option := range options {
		option(wallet)
	}

	wallet.initialValue = wallet.balance(baseCoin).Free
	log.Infof("using paper wallet, initial portfolio = %f %s", wallet.initialValue, baseCoin)
	return wallet
}

// ID returns the next order id.
func (p *PaperWallet) ID() int64 {
	return p.counter.Add(1)
}

// balance returns the balance of asset, creating an empty one if needed
func (p *PaperWallet) balance(asset string) *assetBalance {
	if _, ok := p.assets[asset]; !ok {
		p.assets[asset] = &assetBalance{}
	}
	return p.assets[asset]
}

// AssetsInfo returns the limits of the data feed, or permissive ones without it
func (p *PaperWallet) AssetsInfo(pair string) core.AssetInfo {
	if p.feeder != nil {
		return p.feeder.AssetsInfo(pair)
	}

	asset, quote := SplitAssetQuote(pair)
	return core.AssetInfo{
		BaseAsset:          asset,
		QuoteAsset:         quote,
		MaxPrice:           math.MaxFloat64,
		MaxQuantity:        math.MaxFloat64,
		StepSize:           0.00000001,
		TickSize:           0.00000001,
		QuotePrecision:     8,
		BaseAssetPrecision: 8,
	}
}

// LastQuote prefers the last candle seen by the wallet over asking the feeder.
func (p *PaperWallet) LastQuote(ctx context.Context, pair string) (float64, error) {
	p.mu.RLock()
	candle, ok := p.lastCandle[pair]
	p.mu.RUnlock()
	if ok {
		return candle.Close, nil
	}

	if p.feeder == nil {
		return 0, ErrNoFeeder
	}
	return p.feeder.LastQuote(ctx, pair)
}

// CandlesByPeriod delegates to the data feed, if any
func (p *PaperWallet) CandlesByPeriod(ctx context.Context, pair, period string, start, end time.Time) ([]core.Candle, error) {
	if p.feeder == nil {
		return nil, ErrNoFeeder
	}
	return p.feeder.CandlesByPeriod(ctx, pair, period, start, end)
}

// CandlesByLimit delegates to the data feed, if any
func (p *PaperWallet) CandlesByLimit(ctx context.Context, pair, period string, limit int) ([]core.Candle, error) {
	if p.feeder == nil {
		return nil, ErrNoFeeder
	}
	return p.feeder.CandlesByLimit(ctx, pair, period, limit)
}

// CandlesSubscription delegates to the data feed, if any
func (p *PaperWallet) CandlesSubscription(ctx context.Context, pair, timeframe string) (chan core.Candle, chan error) {
	if p.feeder == nil {
		ccandle, cerr := make(chan core.Candle), make(chan error, 1)
		cerr <- ErrNoFeeder
		close(ccandle)
		close(cerr)
		return ccandle, cerr
	}
	return p.feeder.CandlesSubscription(ctx, pair, timeframe)
}

// AssetValues returns the value history of one asset, in the base coin
func (p *PaperWallet) AssetValues(asset string) []AssetValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]AssetValue(nil), p.assetValues[asset]...)
}

// EquityValues returns the total value history of the wallet
func (p *PaperWallet) EquityValues() []AssetValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]AssetValue(nil), p.equityValues...)
}

func (p *PaperWallet) account() (core.Account, error) {
	balances := make([]core.Balance, 0, len(p.assets))
	for asset, info := range p.assets {
		balances = append(balances, core.Balance{Asset: asset, Free: info.Free, Lock: info.Lock})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Asset < balances[j].Asset })
	return core.NewAccount(balances)
}

// Account returns the free and locked balance of every asset
func (p *PaperWallet) Account(_ context.Context) (core.Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.account()
}

// Position returns the total (free and locked) asset and quote held for a pair.
func (p *PaperWallet) Position(_ context.Context, pair string) (asset, quote float64, err error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acc, err := p.account()
	if err != nil {
		return 0, 0, err
	}

	assetTick, quoteTick := SplitAssetQuote(pair)
	assetBalance, quoteBalance := acc.Balance(assetTick, quoteTick)
	return assetBalance.Total(), quoteBalance.Total(), nil
}

// Order retrieves an order by its exchange id
func (p *PaperWallet) Order(_ context.Context, _ string, id int64) (core.Order, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, order := range p.orders {
		if order.ExchangeID == id {
			return order, nil
		}
	}
	return core.Order{}, core.ErrOrderNotFound
}

// checkQuantity rejects non positive sizes and sizes below the minimum of the pair
func (p *PaperWallet) checkQuantity(pair string, size float64) error {
	if size <= 0 || math.IsNaN(size) {
		return &OrderError{Err: core.ErrInvalidQuantity, Pair: pair, Quantity: size}
	}
	if info := p.AssetsInfo(pair); size < info.MinQuantity {
		return &OrderError{
			Err:      fmt.Errorf("%w: below minimum %f", core.ErrInvalidQuantity, info.MinQuantity),
			Pair:     pair,
			Quantity: size,
		}
	}
	return nil
}

// reserve locks size of the asset for sells, or the quote cost plus fee for buys.
// It returns the order size to use, which for sells may be clamped to the free
// balance. The caller holds the lock.
func (p *PaperWallet) reserve(side core.SideType, pair string, size, price, fee float64) (reservation, float64, error) {
	asset, quote := SplitAssetQuote(pair)
	if asset == "" {
		return reservation{}, 0, &OrderError{Err: core.ErrInvalidAsset, Pair: pair, Quantity: size}
	}

	res := reservation{asset: asset, amount: size}
	if side == core.SideTypeBuy {
		res = reservation{asset: quote, amount: size * price * (1 + fee)}
	}

	balance := p.balance(res.asset)
	amount, ok := balance.cover(res.amount)
	if !ok {
		return reservation{}, 0, &OrderError{Err: core.ErrInsufficientFunds, Pair: pair, Quantity: size}
	}
	res.amount = amount
	if side == core.SideTypeSell {
		size = amount
	}

	balance.Free -= res.amount
	balance.Lock += res.amount
	return res, size, nil
}

// release unlocks the funds held by a cancelled order or group
func (p *PaperWallet) release(key int64) {
	res, ok := p.reservations[key]
	if !ok {
		return
	}
	balance := p.balance(res.asset)
	balance.Lock -= res.amount
	balance.Free += res.amount
	delete(p.reservations, key)
}

// fill applies an execution to the balances. A reserved amount, when given, is
// consumed from the locked balance instead of the free one. The caller holds the lock.
func (p *PaperWallet) fill(order *core.Order, price, fee float64, reserved *reservation, at time.Time) {
	asset, quote := SplitAssetQuote(order.Pair)
	assetBalance, quoteBalance := p.balance(asset), p.balance(quote)
	value := order.Quantity * price
	held := assetBalance.Free + assetBalance.Lock

	if order.Side == core.SideTypeBuy {
		cost := value * (1 + fee)
		if reserved != nil {
			quoteBalance.Lock -= reserved.amount
			quoteBalance.Free += reserved.amount - cost
		} else {
			quoteBalance.Free -= cost
		}
		assetBalance.Free += order.Quantity
		quoteBalance.settle()

		p.avgPrice[order.Pair] = (held*p.avgPrice[order.Pair] + value) / (held + order.Quantity)
	} else {
		if reserved != nil {
			assetBalance.Lock -= order.Quantity
		} else {
			assetBalance.Free -= order.Quantity
		}
		assetBalance.settle()
		quoteBalance.Free += value * (1 - fee)

		if avg := p.avgPrice[order.Pair]; avg > 0 {
			profit := value - order.Quantity*avg
			p.log.Infof("PROFIT = %.4f %s (%.2f %%)", profit, quote, profit/(order.Quantity*avg)*100)
		}
		if held-order.Quantity <= 0 {
			delete(p.avgPrice, order.Pair)
		}
	}

	p.volume[order.Pair] += value
	order.Price = price
	order.Status = core.OrderStatusTypeFilled
	order.UpdatedAt = at
}

func (p *PaperWallet) newOrder(side core.SideType, pair string, kind core.OrderType, size, price float64) core.Order {
	last := p.lastCandle[pair]
	return core.Order{
		ExchangeID: p.ID(),
		CreatedAt:  last.Time,
		UpdatedAt:  last.Time,
		Pair:       pair,
		Side:       side,
		Type:       kind,
		Status:     core.OrderStatusTypeNew,
		Price:      price,
		Quantity:   size,
		RefPrice:   last.Close,
	}
}

// CreateOrderMarket fills size at the last close, paying the taker fee
func (p *PaperWallet) CreateOrderMarket(_ context.Context, side core.SideType, pair string, size float64) (core.Order, error) {
	if err := p.checkQuantity(pair, size); err != nil {
		return core.Order{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	last, ok := p.lastCandle[pair]
	if !ok {
		return core.Order{}, &OrderError{Err: ErrNoQuote, Pair: pair, Quantity: size}
	}

	asset, quote := SplitAssetQuote(pair)
	if asset == "" {
		return core.Order{}, &OrderError{Err: core.ErrInvalidAsset, Pair: pair, Quantity: size}
	}

	quantity, ok := size, false
	if side == core.SideTypeBuy {
		_, ok = p.balance(quote).cover(size * last.Close * (1 + p.takerFee))
	} else {
		quantity, ok = p.balance(asset).cover(size)
	}
	if !ok {
		return core.Order{}, &OrderError{Err: core.ErrInsufficientFunds, Pair: pair, Quantity: size}
	}
	size = quantity

	order := p.newOrder(side, pair, core.OrderTypeMarket, size, last.Close)
	p.fill(&order, last.Close, p.takerFee, nil, last.Time)
	p.orders = append(p.orders, order)
	return order, nil
}

// CreateOrderMarketQuote trades the asset amount worth quoteQuantity at the last close,
// taker fee included on buys, rounded down to the lot size.
func (p *PaperWallet) CreateOrderMarketQuote(ctx context.Context, side core.SideType, pair string, quoteQuantity float64) (core.Order, error) {
	price, err := p.LastQuote(ctx, pair)
	if err != nil {
		return core.Order{}, &OrderError{Err: err, Pair: pair, Quantity: quoteQuantity}
	}
	if price <= 0 {
		return core.Order{}, &OrderError{Err: ErrNoQuote, Pair: pair, Quantity: quoteQuantity}
	}

	info := p.AssetsInfo(pair)
	if side == core.SideTypeBuy {
		price *= 1 + p.takerFee
	}
	quantity := common.AmountToLotSize(info.StepSize, info.BaseAssetPrecision, quoteQuantity/price)
	return p.CreateOrderMarket(ctx, side, pair, quantity)
}

// CreateOrderLimit reserves the funds of a limit order, filled by OnCandle
func (p *PaperWallet) CreateOrderLimit(_ context.Context, side core.SideType, pair string, size, limit float64) (core.Order, error) {
	if err := p.checkQuantity(pair, size); err != nil {
		return core.Order{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	res, size, err := p.reserve(side, pair, size, limit, p.makerFee)
	if err != nil {
		return core.Order{}, err
	}

	order := p.newOrder(side, pair, core.OrderTypeLimit, size, limit)
	p.reservations[order.ExchangeID] = res
	p.orders = append(p.orders, order)
	return order, nil
}

// CreateOrderStop places a sell stop that triggers when the price trades at or below limit.
func (p *PaperWallet) CreateOrderStop(_ context.Context, pair string, size, limit float64) (core.Order, error) {
	if err := p.checkQuantity(pair, size); err != nil {
		return core.Order{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	res, size, err := p.reserve(core.SideTypeSell, pair, size, limit, p.takerFee)
	if err != nil {
		return core.Order{}, err
	}

	order := p.newOrder(core.SideTypeSell, pair, core.OrderTypeStopLossLimit, size, limit)
	stop := limit
	order.Stop = &stop
	p.reservations[order.ExchangeID] = res
	p.orders = append(p.orders, order)
	return order, nil
}

// CreateOrderOCO places a limit leg at price and a stop leg triggered at stop.
// Both legs share one reservation; filling either cancels the other.
func (p *PaperWallet) CreateOrderOCO(_ context.Context, side core.SideType, pair string,
	size, price, stop, stopLimit float64) ([]core.Order, error) {
	if err := p.checkQuantity(pair, size); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	worst := math.Max(price, math.Max(stop, stopLimit))
	res, size, err := p.reserve(side, pair, size, worst, math.Max(p.makerFee, p.takerFee))
	if err != nil {
		return nil, err
	}

	groupID := p.ID()
	limitMaker := p.newOrder(side, pair, core.OrderTypeLimitMaker, size, price)
	limitMaker.GroupID = &groupID

	stopOrder := p.newOrder(side, pair, core.OrderTypeStopLoss, size, stopLimit)
	stopOrder.GroupID = &groupID
	stopOrder.Stop = &stop

	p.reservations[groupID] = res
	p.orders = append(p.orders, limitMaker, stopOrder)
	return []core.Order{limitMaker, stopOrder}, nil
}

// reservationKey is the group ID of OCO legs and the order ID otherwise
func reservationKey(order core.Order) int64 {
	if order.GroupID != nil {
		return *order.GroupID
	}
	return order.ExchangeID
}

// Cancel cancels an order and, for OCO legs, the rest of its group.
func (p *PaperWallet) Cancel(_ context.Context, order core.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.orders {
		if p.orders[i].ExchangeID != order.ExchangeID {
			continue
		}
		if !p.orders[i].IsActive() {
			return fmt.Errorf("cancel order %d: status %s", order.ExchangeID, p.orders[i].Status)
		}

		key := reservationKey(p.orders[i])
		p.cancelGroup(key, p.orders[i].UpdatedAt)
		p.release(key)
		return nil
	}

	return core.ErrOrderNotFound
}

// cancelGroup cancels the pending legs of an OCO group after one of them filled
func (p *PaperWallet) cancelGroup(key int64, at time.Time) {
	for i := range p.orders {
		if reservationKey(p.orders[i]) == key && p.orders[i].IsActive() {
			p.orders[i].Status = core.OrderStatusTypeCanceled
			p.orders[i].UpdatedAt = at
		}
	}
}

func isLimitOrder(kind core.OrderType) bool {
	return kind == core.OrderTypeLimit ||
		kind == core.OrderTypeLimitMaker ||
		kind == core.OrderTypeTakeProfit ||
		kind == core.OrderTypeTakeProfitLimit
}

func isStopOrder(kind core.OrderType) bool {
	return kind == core.OrderTypeStopLoss || kind == core.OrderTypeStopLossLimit
}

// triggered reports whether the candle traded through the order and at which price.
func triggered(order core.Order, candle core.Candle) (float64, bool) {
	switch {
	case isLimitOrder(order.Type) && order.IsBuy():
		return order.Price, candle.Low <= order.Price
	case isLimitOrder(order.Type) && order.IsSell():
		return order.Price, candle.High >= order.Price
	case isStopOrder(order.Type) && order.Stop != nil && order.IsBuy():
		return *order.Stop, candle.High >= *order.Stop
	case isStopOrder(order.Type) && order.Stop != nil && order.IsSell():
		return *order.Stop, candle.Low <= *order.Stop
	}
	return 0, false
}

// OnCandle fills the pending orders of the candle's pair and, on complete
// candles, records the portfolio value.
func (p *PaperWallet) OnCandle(candle core.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastCandle[candle.Pair] = candle
	if _, ok := p.firstCandle[candle.Pair]; !ok {
		p.firstCandle[candle.Pair] = candle
	}

	for i := range p.orders {
		order := &p.orders[i]
		if order.Pair != candle.Pair || order.Status != core.OrderStatusTypeNew {
			continue
		}

		price, ok := triggered(*order, candle)
		if !ok {
			continue
		}

		fee := p.makerFee
		if isStopOrder(order.Type) {
			fee = p.takerFee
		}

		key := reservationKey(*order)
		res := p.reservations[key]
		p.fill(order, price, fee, &res, candle.Time)
		delete(p.reservations, key)

		if order.GroupID != nil {
			p.cancelGroup(key, candle.Time)
		}
	}

	if candle.Complete {
		p.recordValues(candle)
	}
}

// recordValues appends the value of every held asset and the total equity.
// The caller holds the lock.
func (p *PaperWallet) recordValues(candle core.Candle) {
	var total float64
	for pair, last := range p.lastCandle {
		asset, quote := SplitAssetQuote(pair)
		if quote != p.baseCoin {
			continue
		}

		info, ok := p.assets[asset]
		if !ok {
			continue
		}
		value := (info.Free + info.Lock) * last.Close
		total += value
		p.assetValues[asset] = append(p.assetValues[asset], AssetValue{Time: candle.Time, Value: value})
	}

	base := p.balance(p.baseCoin)
	p.equityValues = append(p.equityValues, AssetValue{
		Time:  candle.Time,
		Value: total + base.Free + base.Lock,
	})
}

// MaxDrawdown is the largest peak to trough fall of the equity history, as a
// negative fraction, with the times of the peak and the trough.
func (p *PaperWallet) MaxDrawdown() (float64, time.Time, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maxDrawdown(p.equityValues)
}

// maxDrawdown returns the largest peak to trough drop of values with its start and end
func maxDrawdown(values []AssetValue) (float64, time.Time, time.Time) {
	if len(values) == 0 {
		return 0, time.Time{}, time.Time{}
	}

	var (
		worst      float64
		start, end time.Time
	)
	peak := values[0]
	for _, v := range values[1:] {
		if v.Value > peak.Value {
			peak = v
			continue
		}
		if peak.Value <= 0 {
			continue
		}
		if dd := (v.Value - peak.Value) / peak.Value; dd < worst {
			worst, start, end = dd, peak.Time, v.Time
		}
	}
	return worst, start, end
}

// WalletStats summarises a simulation.
type WalletStats struct {
	BaseCoin     string
	Start        float64
	Final        float64
	Profit       float64
	ProfitPct    float64
	MarketChange float64
	MaxDrawdown  float64
	Volume       map[string]float64
	Holdings     map[string]float64
}

// Stats computes the start and final values, holdings and volume of the wallet
func (p *PaperWallet) Stats() WalletStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := WalletStats{
		BaseCoin: p.baseCoin,
		Start:    p.initialValue,
		Volume:   make(map[string]float64, len(p.volume)),
		Holdings: make(map[string]float64),
	}

	var marketChange float64
	for pair, last := range p.lastCandle {
		asset, _ := SplitAssetQuote(pair)
		if info, ok := p.assets[asset]; ok {
			quantity := info.Free + info.Lock
			stats.Holdings[asset] = quantity
			stats.Final += quantity * last.Close
		}
		if first := p.firstCandle[pair].Close; first > 0 {
			marketChange += (last.Close - first) / first
		}
	}
	if len(p.lastCandle) > 0 {
		stats.MarketChange = marketChange / float64(len(p.lastCandle))
	}

	if base, ok := p.assets[p.baseCoin]; ok {
		stats.Final += base.Free + base.Lock
	}
	stats.Profit = stats.Final - stats.Start
	if stats.Start > 0 {
		stats.ProfitPct = stats.Profit / stats.Start
	}
	stats.MaxDrawdown, _, _ = maxDrawdown(p.equityValues)
	for pair, volume := range p.volume {
		stats.Volume[pair] = volume
	}
	return stats
}

// Summary prints the final wallet to stdout.
func (p *PaperWallet) Summary() {
	p.WriteSummary(os.Stdout)
}

// WriteSummary writes the wallet results table to w
func (p *PaperWallet) WriteSummary(w io.Writer) {
	stats := p.Stats()

	fmt.Fprintln(w, "----- FINAL WALLET -----")
	assets := make([]string, 0, len(stats.Holdings))
	for asset := range stats.Holdings {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	for _, asset := range assets {
		fmt.Fprintf(w, "%.4f %s\n", stats.Holdings[asset], asset)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "----- RETURNS -----")
	fmt.Fprintf(w, "START PORTFOLIO     = %.2f %s\n", stats.Start, stats.BaseCoin)
	fmt.Fprintf(w, "FINAL PORTFOLIO     = %.2f %s\n", stats.Final, stats.BaseCoin)
	fmt.Fprintf(w, "GROSS PROFIT        = %f %s (%.2f%%)\n", stats.Profit, stats.BaseCoin, stats.ProfitPct*100)
	fmt.Fprintf(w, "MARKET CHANGE (B&H) = %.2f%%\n", stats.MarketChange*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "------ RISK -------")
	fmt.Fprintf(w, "MAX DRAWDOWN = %.2f %%\n", stats.MaxDrawdown*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "------ VOLUME -----")
	var total float64
	pairs := make([]string, 0, len(stats.Volume))
	for pair := range stats.Volume {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	for _, pair := range pairs {
		total += stats.Volume[pair]
		fmt.Fprintf(w, "%s = %.2f %s\n", pair, stats.Volume[pair], stats.BaseCoin)
	}
	fmt.Fprintf(w, "TOTAL = %.2f %s\n", total, stats.BaseCoin)
	fmt.Fprintln(w, "-------------------")
}
