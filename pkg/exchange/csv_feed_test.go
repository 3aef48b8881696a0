package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVFeed_Resample(t *testing.T) {
	feed, err := NewCSVFeed("5m", PairFeed{Pair: "BTCUSDT", File: "testdata/btc-1m.csv", Timeframe: "1m"})
	require.NoError(t, err)

	require.Len(t, feed.CandlePairTimeFrame["BTCUSDT--1m"], 30)
	candles := feed.CandlePairTimeFrame["BTCUSDT--5m"]
	require.Len(t, candles, 6)

	first := candles[0]
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 104.5, first.Close)
	assert.Equal(t, 99.0, first.Low)
	assert.Equal(t, 105.5, first.High)
	assert.Equal(t, 50.0, first.Volume)
	assert.True(t, first.Complete)

	assert.Equal(t, time.Date(2021, 1, 1, 0, 25, 0, 0, time.UTC), candles[5].Time)
}

func TestNewCSVFeed_HeaderMetadata(t *testing.T) {
	feed, err := NewCSVFeed("1h", PairFeed{Pair: "ETHUSDT", File: "testdata/eth-1h.csv", Timeframe: "1h"})
	require.NoError(t, err)

	candles := feed.CandlePairTimeFrame["ETHUSDT--1h"]
	require.Len(t, candles, 5)
	assert.Equal(t, 1.5, candles[0].Metadata["lsr"])
	assert.Equal(t, 14.0, candles[4].Open)

	quote, err := feed.LastQuote(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 15.0, quote)

	_, err = feed.LastQuote(context.Background(), "XRPUSDT")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestNewCSVFeed_HeikinAshi(t *testing.T) {
	feed, err := NewCSVFeed("1h", PairFeed{Pair: "ETHUSDT", File: "testdata/eth-1h.csv", Timeframe: "1h", HeikinAshi: true})
	require.NoError(t, err)

	first := feed.CandlePairTimeFrame["ETHUSDT--1h"][0]
	assert.InDelta(t, (10.0+11+9+12)/4, first.Close, 1e-9)
}

func TestNewCSVFeed_MissingFile(t *testing.T) {
	_, err := NewCSVFeed("1h", PairFeed{Pair: "ETHUSDT", File: "testdata/missing.csv", Timeframe: "1h"})
	require.Error(t, err)
}

func TestCSVFeed_CandlesByLimitAndSubscription(t *testing.T) {
	ctx := context.Background()
	feed, err := NewCSVFeed("1m", PairFeed{Pair: "BTCUSDT", File: "testdata/btc-1m.csv", Timeframe: "1m"})
	require.NoError(t, err)

	preload, err := feed.CandlesByLimit(ctx, "BTCUSDT", "1m", 10)
	require.NoError(t, err)
	require.Len(t, preload, 10)

	_, err = feed.CandlesByLimit(ctx, "BTCUSDT", "1m", 100)
	assert.ErrorIs(t, err, ErrInsufficientData)

	ccandle, _ := feed.CandlesSubscription(ctx, "BTCUSDT", "1m")
	var streamed []core.Candle
	for candle := range ccandle {
		streamed = append(streamed, candle)
	}
	require.Len(t, streamed, 20)
	assert.True(t, streamed[0].Time.After(preload[9].Time))
}

func TestCSVFeed_CandlesByPeriodAndLimit(t *testing.T) {
	feed, err := NewCSVFeed("1m", PairFeed{Pair: "BTCUSDT", File: "testdata/btc-1m.csv", Timeframe: "1m"})
	require.NoError(t, err)

	start := time.Date(2021, 1, 1, 0, 10, 0, 0, time.UTC)
	end := time.Date(2021, 1, 1, 0, 14, 0, 0, time.UTC)
	candles, err := feed.CandlesByPeriod(context.Background(), "BTCUSDT", "1m", start, end)
	require.NoError(t, err)
	assert.Len(t, candles, 5)

	feed.Limit(5 * time.Minute)
	assert.Len(t, feed.CandlePairTimeFrame["BTCUSDT--1m"], 5)
}

func TestOnPeriodBoundary(t *testing.T) {
	at := time.Date(2021, 1, 3, 4, 0, 0, 0, time.UTC)

	tt := []struct {
		timeframe string
		expected  bool
	}{
		{"5m", true},
		{"1h", true},
		{"4h", true},
		{"8h", false},
		{"1d", false},
	}
	for _, tc := range tt {
		t.Run(tc.timeframe, func(t *testing.T) {
			ok, err := onPeriodBoundary(at, tc.timeframe)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}

	_, err := onPeriodBoundary(at, "7x")
	assert.Error(t, err)
}
