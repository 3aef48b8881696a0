package exchange

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
	zlog "github.com/raykavin/stratbook/pkg/logger/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	zl, err := zlog.NewWithWriter(io.Discard, "info", "", false, true)
	require.NoError(t, err)
	return zlog.NewAdapter(zl)
}

var walletStart = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func candleAt(i int, low, close, high float64) core.Candle {
	return core.Candle{
		Pair:     "BTCUSDT",
		Time:     walletStart.Add(time.Duration(i) * time.Hour),
		Open:     close,
		Close:    close,
		Low:      low,
		High:     high,
		Complete: true,
	}
}

func assertBalance(t *testing.T, wallet *PaperWallet, expectedAsset, expectedQuote float64) {
	t.Helper()
	acc, err := wallet.Account(context.Background())
	require.NoError(t, err)
	btc, usdt := acc.Balance("BTC", "USDT")
	assert.InDelta(t, expectedAsset, btc.Total(), 1e-9)
	assert.InDelta(t, expectedQuote, usdt.Total(), 1e-9)
}

func TestPaperWallet_MarketOrders(t *testing.T) {
	ctx := context.Background()
	wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("USDT", 1000))

	_, err := wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 1)
	assert.ErrorIs(t, err, ErrNoQuote)

	wallet.OnCandle(candleAt(0, 99, 100, 101))

	order, err := wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 1)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusTypeFilled, order.Status)
	assert.Equal(t, 100.0, order.Price)
	assertBalance(t, wallet, 1, 900)

	_, err = wallet.CreateOrderMarket(ctx, core.SideTypeSell, "BTCUSDT", 2)
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)

	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, "BTCUSDT", orderErr.Pair)
	assert.Equal(t, 2.0, orderErr.Quantity)

	_, err = wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 0)
	assert.ErrorIs(t, err, core.ErrInvalidQuantity)

	_, err = wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 10)
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)

	_, err = wallet.CreateOrderMarket(ctx, core.SideTypeSell, "BTCUSDT", 1)
	require.NoError(t, err)
	assertBalance(t, wallet, 0, 1000)

	stored, err := wallet.Order(ctx, "BTCUSDT", order.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, order.ExchangeID, stored.ExchangeID)

	_, err = wallet.Order(ctx, "BTCUSDT", 999)
	assert.ErrorIs(t, err, core.ErrOrderNotFound)
}

func TestPaperWallet_MarketQuoteWithFee(t *testing.T) {
	ctx := context.Background()
	wallet := NewPaperWallet("USDT", testLogger(t),
		WithPaperAsset("USDT", 100),
		WithPaperFee(0.001, 0.002),
	)
	wallet.OnCandle(candleAt(0, 99, 100, 101))

	order, err := wallet.CreateOrderMarketQuote(ctx, core.SideTypeBuy, "BTCUSDT", 100)
	require.NoError(t, err)
	assert.InDelta(t, 100/(100*1.002), order.Quantity, 1e-8)

	asset, quote, err := wallet.Position(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, order.Quantity, asset, 1e-12)
	assert.InDelta(t, 0, quote, 1e-5)
	assert.GreaterOrEqual(t, quote, 0.0)
}

func TestPaperWallet_LimitOrder(t *testing.T) {
	ctx := context.Background()
	wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("USDT", 1000))
	wallet.OnCandle(candleAt(0, 99, 100, 101))

	order, err := wallet.CreateOrderLimit(ctx, core.SideTypeBuy, "BTCUSDT", 2, 90)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusTypeNew, order.Status)

	acc, err := wallet.Account(ctx)
	require.NoError(t, err)
	_, usdt := acc.Balance("BTC", "USDT")
	assert.Equal(t, 820.0, usdt.Free)
	assert.Equal(t, 180.0, usdt.Lock)

	wallet.OnCandle(candleAt(1, 95, 96, 97))
	order, err = wallet.Order(ctx, "BTCUSDT", order.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusTypeNew, order.Status)

	wallet.OnCandle(candleAt(2, 89, 92, 97))
	order, err = wallet.Order(ctx, "BTCUSDT", order.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusTypeFilled, order.Status)
	assertBalance(t, wallet, 2, 820)

	sell, err := wallet.CreateOrderLimit(ctx, core.SideTypeSell, "BTCUSDT", 1, 110)
	require.NoError(t, err)
	require.NoError(t, wallet.Cancel(ctx, sell))
	assert.Error(t, wallet.Cancel(ctx, sell))

	acc, err = wallet.Account(ctx)
	require.NoError(t, err)
	btc, _ := acc.Balance("BTC", "USDT")
	assert.Equal(t, 2.0, btc.Free)
	assert.Equal(t, 0.0, btc.Lock)
}

func TestPaperWallet_SellRoundTripQuantity(t *testing.T) {
	ctx := context.Background()
	wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("USDT", 1000))
	wallet.OnCandle(candleAt(0, 99, 100, 101))

	_, err := wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 0.3)
	require.NoError(t, err)
	_, err = wallet.CreateOrderMarket(ctx, core.SideTypeSell, "BTCUSDT", 0.1)
	require.NoError(t, err)

	// 0.3 - 0.1 leaves a free balance just under 0.2
	acc, err := wallet.Account(ctx)
	require.NoError(t, err)
	btc, _ := acc.Balance("BTC", "USDT")
	require.Less(t, btc.Free, 0.2)

	t.Run("limit sell of the remaining fill", func(t *testing.T) {
		sell, err := wallet.CreateOrderLimit(ctx, core.SideTypeSell, "BTCUSDT", 0.2, 110)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, sell.Quantity, 1e-12)

		wallet.OnCandle(candleAt(1, 105, 112, 115))
		sell, err = wallet.Order(ctx, "BTCUSDT", sell.ExchangeID)
		require.NoError(t, err)
		assert.Equal(t, core.OrderStatusTypeFilled, sell.Status)

		acc, err := wallet.Account(ctx)
		require.NoError(t, err)
		btc, _ := acc.Balance("BTC", "USDT")
		assert.GreaterOrEqual(t, btc.Free, 0.0)
		assert.GreaterOrEqual(t, btc.Lock, 0.0)
		assertBalance(t, wallet, 0, 1000-30+10+22)
	})

	t.Run("market sell of the remaining fill", func(t *testing.T) {
		_, err := wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 0.3)
		require.NoError(t, err)
		_, err = wallet.CreateOrderMarket(ctx, core.SideTypeSell, "BTCUSDT", 0.1)
		require.NoError(t, err)

		order, err := wallet.CreateOrderMarket(ctx, core.SideTypeSell, "BTCUSDT", 0.2)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, order.Quantity, 1e-12)
		assertBalance(t, wallet, 0, 1002)
	})

	t.Run("real shortfall still fails", func(t *testing.T) {
		_, err := wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 0.2)
		require.NoError(t, err)

		_, err = wallet.CreateOrderMarket(ctx, core.SideTypeSell, "BTCUSDT", 0.2000001)
		assert.ErrorIs(t, err, core.ErrInsufficientFunds)
		_, err = wallet.CreateOrderStop(ctx, "BTCUSDT", 0.2000001, 90)
		assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	})
}

func TestPaperWallet_StopOrder(t *testing.T) {
	ctx := context.Background()
	wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("BTC", 1), WithPaperAsset("USDT", 0))
	wallet.OnCandle(candleAt(0, 99, 100, 101))

	_, err := wallet.CreateOrderStop(ctx, "BTCUSDT", 2, 90)
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)

	order, err := wallet.CreateOrderStop(ctx, "BTCUSDT", 1, 90)
	require.NoError(t, err)
	require.NotNil(t, order.Stop)

	wallet.OnCandle(candleAt(1, 91, 95, 99))
	assertBalance(t, wallet, 1, 0)

	wallet.OnCandle(candleAt(2, 85, 88, 95))
	order, err = wallet.Order(ctx, "BTCUSDT", order.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusTypeFilled, order.Status)
	assertBalance(t, wallet, 0, 90)
}

func TestPaperWallet_OCO(t *testing.T) {
	ctx := context.Background()

	t.Run("take profit leg", func(t *testing.T) {
		wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("BTC", 1))
		wallet.OnCandle(candleAt(0, 99, 100, 101))

		orders, err := wallet.CreateOrderOCO(ctx, core.SideTypeSell, "BTCUSDT", 1, 120, 85, 84)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, *orders[0].GroupID, *orders[1].GroupID)

		wallet.OnCandle(candleAt(1, 100, 115, 121))

		limit, err := wallet.Order(ctx, "BTCUSDT", orders[0].ExchangeID)
		require.NoError(t, err)
		stop, err := wallet.Order(ctx, "BTCUSDT", orders[1].ExchangeID)
		require.NoError(t, err)

		assert.Equal(t, core.OrderStatusTypeFilled, limit.Status)
		assert.Equal(t, core.OrderStatusTypeCanceled, stop.Status)
		assertBalance(t, wallet, 0, 120)
	})

	t.Run("stop leg", func(t *testing.T) {
		wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("BTC", 1))
		wallet.OnCandle(candleAt(0, 99, 100, 101))

		orders, err := wallet.CreateOrderOCO(ctx, core.SideTypeSell, "BTCUSDT", 1, 120, 85, 84)
		require.NoError(t, err)

		wallet.OnCandle(candleAt(1, 80, 82, 100))
		assertBalance(t, wallet, 0, 85)

		limit, err := wallet.Order(ctx, "BTCUSDT", orders[0].ExchangeID)
		require.NoError(t, err)
		assert.Equal(t, core.OrderStatusTypeCanceled, limit.Status)
	})

	t.Run("cancel releases once", func(t *testing.T) {
		wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("BTC", 1))
		wallet.OnCandle(candleAt(0, 99, 100, 101))

		orders, err := wallet.CreateOrderOCO(ctx, core.SideTypeSell, "BTCUSDT", 1, 120, 85, 84)
		require.NoError(t, err)
		require.NoError(t, wallet.Cancel(ctx, orders[1]))

		acc, err := wallet.Account(ctx)
		require.NoError(t, err)
		btc, _ := acc.Balance("BTC", "USDT")
		assert.Equal(t, 1.0, btc.Free)
		assert.Equal(t, 0.0, btc.Lock)
	})
}

func TestPaperWallet_EquityAndDrawdown(t *testing.T) {
	ctx := context.Background()
	wallet := NewPaperWallet("USDT", testLogger(t), WithPaperAsset("USDT", 1000))

	wallet.OnCandle(candleAt(0, 99, 100, 101))
	_, err := wallet.CreateOrderMarket(ctx, core.SideTypeBuy, "BTCUSDT", 1)
	require.NoError(t, err)

	wallet.OnCandle(candleAt(1, 99, 100, 101))
	wallet.OnCandle(candleAt(2, 45, 50, 101))
	wallet.OnCandle(candleAt(3, 99, 120, 121))

	equity := wallet.EquityValues()
	require.Len(t, equity, 4)
	assert.Equal(t, 1000.0, equity[1].Value)
	assert.Equal(t, 950.0, equity[2].Value)
	assert.Equal(t, 1020.0, equity[3].Value)
	assert.Len(t, wallet.AssetValues("BTC"), 3)

	drawdown, start, end := wallet.MaxDrawdown()
	assert.InDelta(t, -0.05, drawdown, 1e-9)
	assert.Equal(t, equity[0].Time, start)
	assert.Equal(t, equity[2].Time, end)

	stats := wallet.Stats()
	assert.InDelta(t, 1020, stats.Final, 1e-9)
	assert.InDelta(t, 20, stats.Profit, 1e-9)
	assert.InDelta(t, 0.2, stats.MarketChange, 1e-9)
	assert.Equal(t, 100.0, stats.Volume["BTCUSDT"])

	var buf bytes.Buffer
	wallet.WriteSummary(&buf)
	assert.Contains(t, buf.String(), "FINAL PORTFOLIO     = 1020.00 USDT")
	assert.Contains(t, buf.String(), "MAX DRAWDOWN = -5.00 %")
}
