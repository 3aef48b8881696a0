package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPriorityQueue(t *testing.T) {
	now := time.Now()
	queue := NewPriorityQueue([]Item{
		Candle{Pair: "BTCUSDT", Time: now.Add(2 * time.Minute)},
		Candle{Pair: "BTCUSDT", Time: now},
	})
	queue.Push(Candle{Pair: "ETHUSDT", Time: now.Add(time.Minute)})
	queue.Push(Candle{Pair: "AAAUSDT", Time: now.Add(time.Minute)})

	require.Equal(t, 4, queue.Len())
	require.Equal(t, now, queue.Peek().(Candle).Time)

	expected := []string{"BTCUSDT", "AAAUSDT", "ETHUSDT", "BTCUSDT"}
	for _, pair := range expected {
		require.Equal(t, pair, queue.Pop().(Candle).Pair)
	}
	require.Nil(t, queue.Pop())
	require.Nil(t, queue.Peek())
}

func TestPriorityQueue_PopLock(t *testing.T) {
	queue := NewPriorityQueue(nil)
	ch := queue.PopLock()

	queue.Push(Candle{Pair: "BTCUSDT", Time: time.Now()})

	select {
	case item := <-ch:
		require.Equal(t, "BTCUSDT", item.(Candle).Pair)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for item")
	}
}
