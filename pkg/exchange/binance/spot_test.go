package binance

import (
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetInfo(t *testing.T) {
	info := parseAssetInfo(binance.Symbol{
		Symbol:             "BTCUSDT",
		BaseAsset:          "BTC",
		QuoteAsset:         "USDT",
		BaseAssetPrecision: 8,
		QuotePrecision:     8,
		Filters: []map[string]interface{}{
			{"filterType": "LOT_SIZE", "minQty": "0.00001", "maxQty": "9000", "stepSize": "0.00001"},
			{"filterType": "PRICE_FILTER", "minPrice": "0.01", "maxPrice": "1000000", "tickSize": "0.01"},
		},
	})

	assert.Equal(t, "BTC", info.BaseAsset)
	assert.Equal(t, 0.00001, info.MinQuantity)
	assert.Equal(t, 9000.0, info.MaxQuantity)
	assert.Equal(t, 0.00001, info.StepSize)
	assert.Equal(t, 0.01, info.TickSize)
	assert.Equal(t, 1000000.0, info.MaxPrice)
}

func TestValidateQuantity(t *testing.T) {
	assets := map[string]core.AssetInfo{
		"BTCUSDT": {MinQuantity: 0.001, MaxQuantity: 100},
	}

	require.NoError(t, validateQuantity(assets, "BTCUSDT", 1))

	err := validateQuantity(assets, "BTCUSDT", 0.0001)
	assert.ErrorIs(t, err, core.ErrInvalidQuantity)

	var orderErr *exchange.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, 0.0001, orderErr.Quantity)

	assert.ErrorIs(t, validateQuantity(assets, "ETHUSDT", 1), core.ErrInvalidAsset)
}

func TestFormat(t *testing.T) {
	info := core.AssetInfo{StepSize: 0.001, BaseAssetPrecision: 8, TickSize: 0.01, QuotePrecision: 8}
	assert.Equal(t, "1.234", formatQuantity(info, 1.23456))
	assert.Equal(t, "101.5", formatPrice(info, 101.509))
	assert.Equal(t, "1.23456", formatQuantity(core.AssetInfo{}, 1.23456))
}

func TestConvertKlines(t *testing.T) {
	open := time.Date(2022, 5, 1, 10, 0, 0, 0, time.UTC)
	kline := binance.Kline{
		OpenTime: open.UnixMilli(),
		Open:     "10.5",
		Close:    "11",
		High:     "12",
		Low:      "10",
		Volume:   "1500",
	}

	candle := convertKline("BTCUSDT", kline)
	assert.Equal(t, open, candle.Time)
	assert.Equal(t, 10.5, candle.Open)
	assert.Equal(t, 11.0, candle.Close)
	assert.Equal(t, 1500.0, candle.Volume)
	assert.True(t, candle.Complete)

	ws := convertWsKline("BTCUSDT", binance.WsKline{StartTime: open.UnixMilli(), Close: "9", IsFinal: false})
	assert.Equal(t, open, ws.Time)
	assert.Equal(t, 9.0, ws.Close)
	assert.False(t, ws.Complete)
	assert.NotNil(t, ws.Metadata)
}

func TestConvertOrder(t *testing.T) {
	filled := convertOrder(&binance.Order{
		OrderID:                  7,
		Symbol:                   "BTCUSDT",
		Side:                     binance.SideTypeBuy,
		Type:                     binance.OrderTypeMarket,
		Status:                   binance.OrderStatusTypeFilled,
		ExecutedQuantity:         "2",
		CummulativeQuoteQuantity: "200",
		Price:                    "0",
	})
	assert.Equal(t, int64(7), filled.ExchangeID)
	assert.Equal(t, 100.0, filled.Price)
	assert.Equal(t, 2.0, filled.Quantity)
	assert.Equal(t, core.OrderStatusTypeFilled, filled.Status)

	pending := convertOrder(&binance.Order{
		Symbol:           "BTCUSDT",
		Price:            "95",
		OrigQuantity:     "1",
		ExecutedQuantity: "0",
	})
	assert.Equal(t, 95.0, pending.Price)
	assert.Equal(t, 1.0, pending.Quantity)
}
