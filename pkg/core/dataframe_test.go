package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDataframe_Sample(t *testing.T) {
	now := time.Now()
	df := Dataframe{
		Pair:     "BTCUSDT",
		Close:    Series[float64]{1, 2, 3, 4, 5},
		Open:     Series[float64]{1, 2, 3, 4, 5},
		High:     Series[float64]{1, 2, 3, 4, 5},
		Low:      Series[float64]{1, 2, 3, 4, 5},
		Volume:   Series[float64]{1, 2, 3, 4, 5},
		Time:     []time.Time{now, now, now, now, now.Add(time.Hour)},
		Metadata: map[string]Series[float64]{"x": {5, 4, 3, 2, 1}},
	}

	sample := df.Sample(2)
	require.Equal(t, Series[float64]{4, 5}, sample.Close)
	require.Equal(t, Series[float64]{2, 1}, sample.Metadata["x"])
	require.Len(t, sample.Time, 2)

	require.Equal(t, df, df.Sample(10))

	candle := df.Candle(0)
	require.Equal(t, 5.0, candle.Close)
	require.Equal(t, now.Add(time.Hour), candle.Time)
}

func TestHeikinAshi(t *testing.T) {
	ha := NewHeikinAshi()

	first := Candle{Open: 10, High: 14, Low: 8, Close: 12}.ToHeikinAshi(ha)
	require.Equal(t, 11.0, first.Open)
	require.Equal(t, 11.0, first.Close)
	require.Equal(t, 14.0, first.High)
	require.Equal(t, 8.0, first.Low)

	second := Candle{Open: 12, High: 16, Low: 12, Close: 16}.ToHeikinAshi(ha)
	require.Equal(t, 11.0, second.Open)
	require.Equal(t, 14.0, second.Close)
	require.True(t, second.Bullish())
}

func TestAccount_Balance(t *testing.T) {
	_, err := NewAccount(nil)
	require.ErrorIs(t, err, ErrEmptyAccount)

	account, err := NewAccount([]Balance{
		{Asset: "BTC", Free: 1, Lock: 0.5},
		{Asset: "USDT", Free: 1000},
	})
	require.NoError(t, err)

	asset, quote := account.Balance("BTC", "USDT")
	require.Equal(t, 1.5, asset.Total())
	require.Equal(t, 1000.0, quote.Free)

	missing, _ := account.Balance("ETH", "USDT")
	require.Zero(t, missing.Total())
	require.Equal(t, 1001.5, account.Equity())
}
