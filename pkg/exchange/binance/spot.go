package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
)

var _ core.Exchange = (*Spot)(nil)

// Spot is a Binance spot account and market data feed.
type Spot struct {
	client           *binance.Client
	assetsInfo       map[string]core.AssetInfo
	heikinAshi       bool
	metadataFetchers []MetadataFetcher
	log              logger.Logger
}

type Option func(*Spot)

// WithBinanceCredentials sets the API key and secret used for signed requests
func WithBinanceCredentials(key, secret string) Option {
	return func(s *Spot) {
		s.client = binance.NewClient(key, secret)
	}
}

// WithTestNet switches the whole process to the Binance spot testnet.
func WithTestNet() Option {
	return func(_ *Spot) {
		binance.UseTestnet = true
	}
}

// WithBinanceHeikinAshiCandle converts every candle to Heikin-Ashi
func WithBinanceHeikinAshiCandle() Option {
	return func(s *Spot) {
		s.heikinAshi = true
	}
}

// WithMetadataFetchers adds fetchers that attach extra values to each candle
func WithMetadataFetchers(fetchers ...MetadataFetcher) Option {
	return func(s *Spot) {
		s.metadataFetchers = append(s.metadataFetchers, fetchers...)
	}
}

// NewSpot pings Binance and loads the trading rules of every symbol.
func NewSpot(ctx context.Context, log logger.Logger, options ...Option) (*Spot, error) {
	binance.WebsocketKeepalive = true

	spot := &Spot{
		client:     binance.NewClient("", ""),
		assetsInfo: make(map[string]core.AssetInfo),
		log:        log,
	}
	for _, option := range options {
		option(spot)
	}

	if err := spot.client.NewPingService().Do(ctx); err != nil {
		return nil, fmt.Errorf("binance ping: %w", err)
	}

	info, err := spot.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance exchange info: %w", err)
	}

	for _, symbol := range info.Symbols {
		spot.assetsInfo[symbol.Symbol] = parseAssetInfo(symbol)
		exchange.DefaultPairs().Set(symbol.Symbol, symbol.BaseAsset, symbol.QuoteAsset)
	}

	log.Info("using Binance spot exchange")
	return spot, nil
}

func parseFilterFloat(filter map[string]interface{}, key string) float64 {
	raw, ok := filter[key].(string)
	if !ok {
		return 0
	}
	value, _ := strconv.ParseFloat(raw, 64)
	return value
}

func parseAssetInfo(symbol binance.Symbol) core.AssetInfo {
	info := core.AssetInfo{
		BaseAsset:          symbol.BaseAsset,
		QuoteAsset:         symbol.QuoteAsset,
		BaseAssetPrecision: symbol.BaseAssetPrecision,
		QuotePrecision:     symbol.QuotePrecision,
	}

	for _, filter := range symbol.Filters {
		switch filter["filterType"] {
		case string(binance.SymbolFilterTypeLotSize):
			info.MinQuantity = parseFilterFloat(filter, "minQty")
			info.MaxQuantity = parseFilterFloat(filter, "maxQty")
			info.StepSize = parseFilterFloat(filter, "stepSize")
		case string(binance.SymbolFilterTypePriceFilter):
			info.MinPrice = parseFilterFloat(filter, "minPrice")
			info.MaxPrice = parseFilterFloat(filter, "maxPrice")
			info.TickSize = parseFilterFloat(filter, "tickSize")
		}
	}
	return info
}

// AssetsInfo returns the trading limits of a pair loaded at startup
func (s *Spot) AssetsInfo(pair string) core.AssetInfo {
	return s.assetsInfo[pair]
}

// LastQuote retrieves the most recent price for a trading pair
func (s *Spot) LastQuote(ctx context.Context, pair string) (float64, error) {
	candles, err := s.CandlesByLimit(ctx, pair, "1m", 1)
	if err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, fmt.Errorf("%w: %s", exchange.ErrNoQuote, pair)
	}
	return candles[0].Close, nil
}

// CreateOrderOCO creates a One-Cancels-the-Other order pair
func (s *Spot) CreateOrderOCO(ctx context.Context, side core.SideType, pair string,
	quantity, price, stop, stopLimit float64) ([]core.Order, error) {
	if err := validateQuantity(s.assetsInfo, pair, quantity); err != nil {
		return nil, err
	}

	info := s.assetsInfo[pair]
	oco, err := s.client.NewCreateOCOService().
		Side(binance.SideType(side)).
		Quantity(formatQuantity(info, quantity)).
		Price(formatPrice(info, price)).
		StopPrice(formatPrice(info, stop)).
		StopLimitPrice(formatPrice(info, stopLimit)).
		StopLimitTimeInForce(binance.TimeInForceTypeGTC).
		Symbol(pair).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]core.Order, 0, len(oco.OrderReports))
	for _, report := range oco.OrderReports {
		groupID := report.OrderListID
		price, _ := strconv.ParseFloat(report.Price, 64)
		quantity, _ := strconv.ParseFloat(report.OrigQuantity, 64)
		order := core.Order{
			ExchangeID: report.OrderID,
			CreatedAt:  millis(oco.TransactionTime),
			UpdatedAt:  millis(oco.TransactionTime),
			Pair:       pair,
			Side:       core.SideType(report.Side),
			Type:       core.OrderType(report.Type),
			Status:     core.OrderStatusType(report.Status),
			Price:      price,
			Quantity:   quantity,
			GroupID:    &groupID,
		}
		if order.Type == core.OrderTypeStopLossLimit || order.Type == core.OrderTypeStopLoss {
			order.Stop = &stop
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// CreateOrderStop creates a stop loss limit order
func (s *Spot) CreateOrderStop(ctx context.Context, pair string, quantity, limit float64) (core.Order, error) {
	if err := validateQuantity(s.assetsInfo, pair, quantity); err != nil {
		return core.Order{}, err
	}

	info := s.assetsInfo[pair]
	resp, err := s.client.NewCreateOrderService().
		Symbol(pair).
		Type(binance.OrderTypeStopLossLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Side(binance.SideTypeSell).
		Quantity(formatQuantity(info, quantity)).
		Price(formatPrice(info, limit)).
		StopPrice(formatPrice(info, limit)).
		Do(ctx)
	if err != nil {
		return core.Order{}, err
	}

	order := convertCreateResponse(resp, false)
	order.Stop = &limit
	return order, nil
}

// CreateOrderLimit creates a good till cancelled limit order
func (s *Spot) CreateOrderLimit(ctx context.Context, side core.SideType, pair string,
	quantity, limit float64) (core.Order, error) {
	if err := validateQuantity(s.assetsInfo, pair, quantity); err != nil {
		return core.Order{}, err
	}

	info := s.assetsInfo[pair]
	resp, err := s.client.NewCreateOrderService().
		Symbol(pair).
		Type(binance.OrderTypeLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Side(binance.SideType(side)).
		Quantity(formatQuantity(info, quantity)).
		Price(formatPrice(info, limit)).
		Do(ctx)
	if err != nil {
		return core.Order{}, err
	}
	return convertCreateResponse(resp, false), nil
}

// CreateOrderMarket creates a market order with a specified size
func (s *Spot) CreateOrderMarket(ctx context.Context, side core.SideType, pair string, quantity float64) (core.Order, error) {
	if err := validateQuantity(s.assetsInfo, pair, quantity); err != nil {
		return core.Order{}, err
	}

	resp, err := s.client.NewCreateOrderService().
		Symbol(pair).
		Type(binance.OrderTypeMarket).
		Side(binance.SideType(side)).
		Quantity(formatQuantity(s.assetsInfo[pair], quantity)).
		NewOrderRespType(binance.NewOrderRespTypeFULL).
		Do(ctx)
	if err != nil {
		return core.Order{}, err
	}
	return convertCreateResponse(resp, true), nil
}

// CreateOrderMarketQuote spends (or receives) quote units of the quote asset.
func (s *Spot) CreateOrderMarketQuote(ctx context.Context, side core.SideType, pair string, quote float64) (core.Order, error) {
	if _, ok := s.assetsInfo[pair]; !ok {
		return core.Order{}, &exchange.OrderError{Err: core.ErrInvalidAsset, Pair: pair, Quantity: quote}
	}

	resp, err := s.client.NewCreateOrderService().
		Symbol(pair).
		Type(binance.OrderTypeMarket).
		Side(binance.SideType(side)).
		QuoteOrderQty(formatPrice(s.assetsInfo[pair], quote)).
		NewOrderRespType(binance.NewOrderRespTypeFULL).
		Do(ctx)
	if err != nil {
		return core.Order{}, err
	}
	return convertCreateResponse(resp, true), nil
}

func convertCreateResponse(resp *binance.CreateOrderResponse, executed bool) core.Order {
	price, _ := strconv.ParseFloat(resp.Price, 64)
	quantity, _ := strconv.ParseFloat(resp.OrigQuantity, 64)
	if executed {
		cost, _ := strconv.ParseFloat(resp.CummulativeQuoteQuantity, 64)
		quantity, _ = strconv.ParseFloat(resp.ExecutedQuantity, 64)
		if quantity > 0 {
			price = cost / quantity
		}
	}

	return core.Order{
		ExchangeID: resp.OrderID,
		CreatedAt:  millis(resp.TransactTime),
		UpdatedAt:  millis(resp.TransactTime),
		Pair:       resp.Symbol,
		Side:       core.SideType(resp.Side),
		Type:       core.OrderType(resp.Type),
		Status:     core.OrderStatusType(resp.Status),
		Price:      price,
		Quantity:   quantity,
	}
}

// Cancel cancels an existing order
func (s *Spot) Cancel(ctx context.Context, order core.Order) error {
	_, err := s.client.NewCancelOrderService().
		Symbol(order.Pair).
		OrderID(order.ExchangeID).
		Do(ctx)
	return err
}

// Orders lists the newest orders of a pair.
func (s *Spot) Orders(ctx context.Context, pair string, limit int) ([]core.Order, error) {
	result, err := s.client.NewListOrdersService().
		Symbol(pair).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]core.Order, 0, len(result))
	for _, order := range result {
		orders = append(orders, convertOrder(order))
	}
	return orders, nil
}

// Order retrieves information about a specific order
func (s *Spot) Order(ctx context.Context, pair string, id int64) (core.Order, error) {
	order, err := s.client.NewGetOrderService().
		Symbol(pair).
		OrderID(id).
		Do(ctx)
	if err != nil {
		return core.Order{}, err
	}
	return convertOrder(order), nil
}

// convertOrder prices filled orders at their average execution price.
func convertOrder(order *binance.Order) core.Order {
	var price float64
	cost, _ := strconv.ParseFloat(order.CummulativeQuoteQuantity, 64)
	quantity, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)
	if cost > 0 && quantity > 0 {
		price = cost / quantity
	} else {
		price, _ = strconv.ParseFloat(order.Price, 64)
		quantity, _ = strconv.ParseFloat(order.OrigQuantity, 64)
	}

	return core.Order{
		ExchangeID: order.OrderID,
		Pair:       order.Symbol,
		CreatedAt:  millis(order.Time),
		UpdatedAt:  millis(order.UpdateTime),
		Side:       core.SideType(order.Side),
		Type:       core.OrderType(order.Type),
		Status:     core.OrderStatusType(order.Status),
		Price:      price,
		Quantity:   quantity,
	}
}

// Account retrieves the current balances of the account
func (s *Spot) Account(ctx context.Context) (core.Account, error) {
	acc, err := s.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return core.Account{}, err
	}

	balances := make([]core.Balance, 0, len(acc.Balances))
	for _, balance := range acc.Balances {
		free, err := strconv.ParseFloat(balance.Free, 64)
		if err != nil {
			return core.Account{}, err
		}
		locked, err := strconv.ParseFloat(balance.Locked, 64)
		if err != nil {
			return core.Account{}, err
		}
		if free == 0 && locked == 0 {
			continue
		}
		balances = append(balances, core.Balance{Asset: balance.Asset, Free: free, Lock: locked})
	}

	return core.NewAccount(balances)
}

// Position retrieves the current asset and quote balances for a trading pair
func (s *Spot) Position(ctx context.Context, pair string) (asset, quote float64, err error) {
	acc, err := s.Account(ctx)
	if err != nil {
		return 0, 0, err
	}

	info := s.assetsInfo[pair]
	assetBalance, quoteBalance := acc.Balance(info.BaseAsset, info.QuoteAsset)
	return assetBalance.Total(), quoteBalance.Total(), nil
}

// CandlesSubscription streams klines, partial ones included, and reconnects
// with exponential backoff until ctx is done.
func (s *Spot) CandlesSubscription(ctx context.Context, pair, period string) (chan core.Candle, chan error) {
	ccandle := make(chan core.Candle)
	cerr := make(chan error)
	ha := core.NewHeikinAshi()
	retry := newBackoff()

	sendErr := func(err error) {
		select {
		case cerr <- err:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(cerr)
		defer close(ccandle)

		for {
			done, stop, err := binance.WsKlineServe(pair, period, func(event *binance.WsKlineEvent) {
				retry.Reset()
				candle := convertWsKline(pair, event.Kline)

				if candle.Complete {
					if s.heikinAshi {
						candle = candle.ToHeikinAshi(ha)
					}
					for _, fetcher := range s.metadataFetchers {
						key, value := fetcher(pair, candle.Time)
						candle.Metadata[key] = value
					}
				}

				select {
				case ccandle <- candle:
				case <-ctx.Done():
				}
			}, sendErr)

			if err != nil {
				sendErr(err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(retry.Duration()):
					continue
				}
			}

			select {
			case <-ctx.Done():
				close(stop)
				<-done
				return
			case <-done:
				wait := retry.Duration()
				s.log.Warnf("kline stream %s-%s closed, reconnecting in %s", pair, period, wait)
				time.Sleep(wait)
			}
		}
	}()

	return ccandle, cerr
}

// CandlesByLimit returns the last limit closed candles.
func (s *Spot) CandlesByLimit(ctx context.Context, pair, period string, limit int) ([]core.Candle, error) {
	data, err := s.client.NewKlinesService().
		Symbol(pair).
		Interval(period).
		Limit(limit + 1).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	// the newest kline is still open
	if len(data) > 0 {
		data = data[:len(data)-1]
	}
	return s.convertKlines(pair, data), nil
}

// CandlesByPeriod fetches the candles between start and end
func (s *Spot) CandlesByPeriod(ctx context.Context, pair, period string, start, end time.Time) ([]core.Candle, error) {
	data, err := s.client.NewKlinesService().
		Symbol(pair).
		Interval(period).
		StartTime(start.UnixMilli()).
		EndTime(end.UnixMilli()).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return s.convertKlines(pair, data), nil
}

func (s *Spot) convertKlines(pair string, data []*binance.Kline) []core.Candle {
	ha := core.NewHeikinAshi()
	candles := make([]core.Candle, 0, len(data))
	for _, d := range data {
		candle := convertKline(pair, *d)
		if s.heikinAshi {
			candle = candle.ToHeikinAshi(ha)
		}
		candles = append(candles, candle)
	}
	return candles
}

func convertKline(pair string, k binance.Kline) core.Candle {
	t := millis(k.OpenTime)
	candle := core.Candle{
		Pair:      pair,
		Time:      t,
		UpdatedAt: t,
		Metadata:  make(map[string]float64),
		Complete:  true,
	}

	candle.Open, _ = strconv.ParseFloat(k.Open, 64)
	candle.Close, _ = strconv.ParseFloat(k.Close, 64)
	candle.High, _ = strconv.ParseFloat(k.High, 64)
	candle.Low, _ = strconv.ParseFloat(k.Low, 64)
	candle.Volume, _ = strconv.ParseFloat(k.Volume, 64)
	return candle
}

func convertWsKline(pair string, k binance.WsKline) core.Candle {
	t := millis(k.StartTime)
	candle := core.Candle{
		Pair:      pair,
		Time:      t,
		UpdatedAt: time.Now().UTC(),
		Metadata:  make(map[string]float64),
		Complete:  k.IsFinal,
	}

	candle.Open, _ = strconv.ParseFloat(k.Open, 64)
	candle.Close, _ = strconv.ParseFloat(k.Close, 64)
	candle.High, _ = strconv.ParseFloat(k.High, 64)
	candle.Low, _ = strconv.ParseFloat(k.Low, 64)
	candle.Volume, _ = strconv.ParseFloat(k.Volume, 64)
	return candle
}
