package exchange

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAssetQuote(t *testing.T) {
	tt := []struct {
		pair  string
		asset string
		quote string
	}{
		{"BTCUSDT", "BTC", "USDT"},
		{"ETHBTC", "ETH", "BTC"},
		{"SOLFDUSD", "SOL", "FDUSD"},
		{"bnbbrl", "BNB", "BRL"},
		{"USDT", "", ""},
		{"XYZ", "", ""},
	}

	for _, tc := range tt {
		t.Run(tc.pair, func(t *testing.T) {
			asset, quote := SplitAssetQuote(tc.pair)
			assert.Equal(t, tc.asset, asset)
			assert.Equal(t, tc.quote, quote)
		})
	}
}

func TestPairService_LoadSave(t *testing.T) {
	service := NewPairService()
	service.Set("1000SATSUSDT", "1000SATS", "USDT")
	service.Set("WBTCBTC", "WBTC", "BTC")

	asset, quote := service.Split("wbtcbtc")
	assert.Equal(t, "WBTC", asset)
	assert.Equal(t, "BTC", quote)

	path := filepath.Join(t.TempDir(), "pairs.json")
	require.NoError(t, service.Save(path))

	loaded := NewPairService()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, 2, loaded.Len())

	data, ok := loaded.Get("1000SATSUSDT")
	require.True(t, ok)
	assert.Equal(t, AssetQuote{Asset: "1000SATS", Quote: "USDT"}, data)

	assert.Error(t, loaded.Load(filepath.Join(t.TempDir(), "missing.json")))
}
