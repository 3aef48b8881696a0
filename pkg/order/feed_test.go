package order

import (
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_Subscribe(t *testing.T) {
	feed := NewOrderFeed()
	all := make(chan core.Order, 10)
	onlyNew := make(chan core.Order, 10)

	feed.Subscribe("BTCUSDT", func(o core.Order) { all <- o }, false)
	feed.Subscribe("BTCUSDT", func(o core.Order) { onlyNew <- o }, true)
	feed.Start()

	feed.Publish(core.Order{ID: 1, Pair: "BTCUSDT"}, true)
	feed.Publish(core.Order{ID: 2, Pair: "BTCUSDT"}, false)
	feed.Publish(core.Order{ID: 3, Pair: "ETHUSDT"}, true)
	feed.Stop()

	require.Len(t, all, 2)
	assert.Equal(t, int64(1), (<-all).ID)
	assert.Equal(t, int64(2), (<-all).ID)

	require.Len(t, onlyNew, 1)
	assert.Equal(t, int64(1), (<-onlyNew).ID)
}

func TestFeed_SubscribeAfterStart(t *testing.T) {
	feed := NewOrderFeed()
	feed.Start()

	received := make(chan core.Order, 1)
	feed.Subscribe("ETHUSDT", func(o core.Order) { received <- o }, false)
	feed.Publish(core.Order{ID: 7, Pair: "ETHUSDT"}, true)

	select {
	case o := <-received:
		assert.Equal(t, int64(7), o.ID)
	case <-time.After(time.Second):
		t.Fatal("order not delivered")
	}
	feed.Stop()
}
