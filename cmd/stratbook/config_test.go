package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raykavin/stratbook/pkg/storage"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"BTCUSDT"}, cfg.Pairs)
	assert.Equal(t, "USDT", cfg.Wallet.Asset)
	assert.Equal(t, 10000.0, cfg.Wallet.Balance)
	assert.Equal(t, 0.001, cfg.Wallet.TakerFee)
	assert.Equal(t, "ema_cross", cfg.Strategy.Name)
	assert.Equal(t, "grid", cfg.Optimizer.Method)
	assert.Equal(t, "profit", cfg.Optimizer.Metric)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Telegram.Enabled)
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stratbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pairs: [ETHUSDT]
strategy:
  name: rsi_threshold
  params:
    period: 10
wallet:
  asset: BUSD
  balance: 2500
telegram:
  users: [1, 2]
`), 0o644))

	t.Setenv("STRATBOOK_WALLET_BALANCE", "500")
	t.Setenv("STRATBOOK_OPTIMIZER_METHOD", "random")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("strategy", "", "")
	flags.Float64("taker-fee", 0, "")
	flags.String("asset", "", "")
	require.NoError(t, flags.Parse([]string{"--strategy", "turtle", "--taker-fee", "0.002"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, []string{"ETHUSDT"}, cfg.Pairs)
	assert.Equal(t, "turtle", cfg.Strategy.Name)
	assert.Equal(t, "BUSD", cfg.Wallet.Asset, "unset flags keep the file value")
	assert.Equal(t, 500.0, cfg.Wallet.Balance)
	assert.Equal(t, 0.002, cfg.Wallet.TakerFee)
	assert.Equal(t, "random", cfg.Optimizer.Method)
	assert.Equal(t, []int{1, 2}, cfg.Telegram.Users)

	settings := cfg.Settings()
	assert.Equal(t, []string{"ETHUSDT"}, settings.Pairs)
	assert.Equal(t, []int{1, 2}, settings.Telegram.Users)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestConfig_StrategyParams(t *testing.T) {
	cfg := Config{Strategy: StrategyConfig{Params: map[string]any{"period": 10, "oversold": 25.0}}}

	params, err := cfg.StrategyParams([]string{"oversold=20", "overbought=80"})
	require.NoError(t, err)
	assert.Equal(t, 10, params["period"])
	assert.Equal(t, "20", params["oversold"])
	assert.Equal(t, "80", params["overbought"])

	_, err = cfg.StrategyParams([]string{"broken"})
	require.Error(t, err)

	empty, err := Config{}.StrategyParams(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestConfig_Feeds(t *testing.T) {
	t.Run("default files per pair", func(t *testing.T) {
		cfg := Config{Pairs: []string{"btcusdt", "ETHUSDT"}}

		feeds, err := cfg.Feeds("1h")
		require.NoError(t, err)
		require.Len(t, feeds, 2)
		assert.Equal(t, "BTCUSDT", feeds[0].Pair)
		assert.Equal(t, "btcusdt-1h.csv", feeds[0].File)
		assert.Equal(t, "1h", feeds[0].Timeframe)
		assert.Equal(t, "ethusdt-1h.csv", feeds[1].File)
	})

	t.Run("explicit data and timeframe", func(t *testing.T) {
		cfg := Config{
			Data:          []string{"btcusdt = data/btc.csv"},
			DataTimeframe: "15m",
			Binance:       BinanceConfig{HeikinAshi: true},
		}

		feeds, err := cfg.Feeds("1h")
		require.NoError(t, err)
		require.Len(t, feeds, 1)
		assert.Equal(t, "BTCUSDT", feeds[0].Pair)
		assert.Equal(t, "data/btc.csv", feeds[0].File)
		assert.Equal(t, "15m", feeds[0].Timeframe)
		assert.True(t, feeds[0].HeikinAshi)
	})

	t.Run("malformed entry", func(t *testing.T) {
		for _, entry := range []string{"BTCUSDT", "=btc.csv", "BTCUSDT="} {
			_, err := Config{Data: []string{entry}}.Feeds("1h")
			assert.Error(t, err, entry)
		}
	})
}

func TestOpenStorage(t *testing.T) {
	memory, err := OpenStorage("")
	require.NoError(t, err)
	assert.IsType(t, &storage.Bunt{}, memory)

	file, err := OpenStorage(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	assert.IsType(t, &storage.Bunt{}, file)
}
