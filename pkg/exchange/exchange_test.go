package exchange

import (
	"context"
	"sync"
	"testing"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataFeedSubscription(t *testing.T) {
	ctx := context.Background()
	feed, err := NewCSVFeed("1m",
		PairFeed{Pair: "BTCUSDT", File: "testdata/btc-1m.csv", Timeframe: "1m"},
		PairFeed{Pair: "ETHUSDT", File: "testdata/eth-1h.csv", Timeframe: "1h"},
	)
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		received = make(map[string]int)
	)
	consumer := func(candle core.Candle) {
		mu.Lock()
		defer mu.Unlock()
		received[candle.Pair]++
	}

	subscription := NewDataFeed(feed, testLogger(t))
	subscription.Subscribe("BTCUSDT", "1m", consumer, true)
	subscription.Subscribe("ETHUSDT", "1h", consumer, false)
	assert.Equal(t, []string{"BTCUSDT--1m", "ETHUSDT--1h"}, subscription.Keys())

	subscription.Preload("BTCUSDT", "1m", []core.Candle{
		{Pair: "BTCUSDT", Complete: true},
		{Pair: "BTCUSDT", Complete: false},
	})
	assert.Equal(t, 1, received["BTCUSDT"])

	subscription.Start(ctx, true)
	assert.Equal(t, 31, received["BTCUSDT"])
	assert.Equal(t, 5, received["ETHUSDT"])
}

func TestSplitFeedKey(t *testing.T) {
	pair, timeframe := splitFeedKey(feedKey("BTCUSDT", "4h"))
	assert.Equal(t, "BTCUSDT", pair)
	assert.Equal(t, "4h", timeframe)

	pair, timeframe = splitFeedKey("broken")
	assert.Empty(t, pair)
	assert.Empty(t, timeframe)
}
