package core

import (
	"context"
	"time"
)

// Exchange is a venue that can both stream market data and take orders.
type Exchange interface {
	Broker
	Feeder
}

// Feeder provides market data.
type Feeder interface {
	AssetsInfo(pair string) AssetInfo
	LastQuote(ctx context.Context, pair string) (float64, error)
	CandlesByPeriod(ctx context.Context, pair, period string, start, end time.Time) ([]Candle, error)
	CandlesByLimit(ctx context.Context, pair, period string, limit int) ([]Candle, error)
	CandlesSubscription(ctx context.Context, pair, timeframe string) (chan Candle, chan error)
}

// Broker places and tracks orders.
type Broker interface {
	Account(ctx context.Context) (Account, error)
	Position(ctx context.Context, pair string) (asset, quote float64, err error)
	Order(ctx context.Context, pair string, id int64) (Order, error)
	CreateOrderOCO(ctx context.Context, side SideType, pair string, size, price, stop, stopLimit float64) ([]Order, error)
	CreateOrderLimit(ctx context.Context, side SideType, pair string, size float64, limit float64) (Order, error)
	CreateOrderMarket(ctx context.Context, side SideType, pair string, size float64) (Order, error)
	CreateOrderMarketQuote(ctx context.Context, side SideType, pair string, quote float64) (Order, error)
	CreateOrderStop(ctx context.Context, pair string, quantity float64, limit float64) (Order, error)
	Cancel(ctx context.Context, order Order) error
}

type Notifier interface {
	Notify(string)
	OnOrder(order Order)
	OnError(err error)
}

type NotifierWithStart interface {
	Notifier
	Start()
}
