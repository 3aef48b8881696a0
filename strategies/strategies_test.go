package strategies

import (
	"context"
	"io"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
	zlog "github.com/raykavin/stratbook/pkg/logger/zerolog"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPair = "BTCUSDT"

var seriesStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	zl, err := zlog.NewWithWriter(io.Discard, "info", "", false, true)
	require.NoError(t, err)
	return zlog.NewAdapter(zl)
}

// recorder is a paper wallet remembering the orders strategies create.
// The next rejectSells limit sells fail with ErrInsufficientFunds.
type recorder struct {
	*exchange.PaperWallet
	quotes      []float64
	orders      []core.Order
	rejectSells int
}

func newRecorder(t *testing.T, options ...exchange.PaperWalletOption) *recorder {
	t.Helper()
	options = append([]exchange.PaperWalletOption{exchange.WithPaperAsset("USDT", 10000)}, options...)
	return &recorder{PaperWallet: exchange.NewPaperWallet("USDT", testLogger(t), options...)}
}

func (r *recorder) keep(order core.Order, err error) (core.Order, error) {
	if err == nil {
		r.orders = append(r.orders, order)
	}
	return order, err
}

func (r *recorder) CreateOrderMarket(ctx context.Context, side core.SideType, pair string, size float64) (core.Order, error) {
	return r.keep(r.PaperWallet.CreateOrderMarket(ctx, side, pair, size))
}

func (r *recorder) CreateOrderMarketQuote(ctx context.Context, side core.SideType, pair string, quote float64) (core.Order, error) {
	order, err := r.PaperWallet.CreateOrderMarketQuote(ctx, side, pair, quote)
	if err == nil {
		r.quotes = append(r.quotes, quote)
	}
	return r.keep(order, err)
}

func (r *recorder) CreateOrderLimit(ctx context.Context, side core.SideType, pair string, size, limit float64) (core.Order, error) {
	if side == core.SideTypeSell && r.rejectSells > 0 {
		r.rejectSells--
		return core.Order{}, core.ErrInsufficientFunds
	}
	return r.keep(r.PaperWallet.CreateOrderLimit(ctx, side, pair, size, limit))
}

func (r *recorder) CreateOrderStop(ctx context.Context, pair string, size, limit float64) (core.Order, error) {
	return r.keep(r.PaperWallet.CreateOrderStop(ctx, pair, size, limit))
}

func (r *recorder) CreateOrderOCO(ctx context.Context, side core.SideType, pair string, size, price, stop, stopLimit float64) ([]core.Order, error) {
	orders, err := r.PaperWallet.CreateOrderOCO(ctx, side, pair, size, price, stop, stopLimit)
	if err == nil {
		r.orders = append(r.orders, orders...)
	}
	return orders, err
}

func (r *recorder) count(side core.SideType, kind core.OrderType) int {
	var n int
	for _, order := range r.orders {
		if order.Side == side && order.Type == kind {
			n++
		}
	}
	return n
}

func (r *recorder) position(t *testing.T) (asset, quote float64) {
	t.Helper()
	asset, quote, err := r.Position(context.Background(), testPair)
	require.NoError(t, err)
	return asset, quote
}

func candle(i int, open, high, low, close, volume float64) core.Candle {
	ts := seriesStart.Add(time.Duration(i) * time.Hour)
	return core.Candle{
		Pair:      testPair,
		Time:      ts,
		UpdatedAt: ts.Add(time.Hour - time.Second),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
		Complete:  true,
	}
}

// closes builds flat candles spanning one unit around each close.
func closes(values ...float64) []core.Candle {
	candles := make([]core.Candle, len(values))
	for i, v := range values {
		candles[i] = candle(i, v, v+0.5, v-0.5, v, 100)
	}
	return candles
}

// synthetic is a drifting pair of sine waves with periodic volume spikes.
func synthetic(n int) []core.Candle {
	candles := make([]core.Candle, n)
	prev := 100.0
	for i := range candles {
		x := float64(i)
		c := 100 + 15*math.Sin(x/12) + 5*math.Sin(x/5) + 0.03*x
		volume := 100 + 50*math.Sin(x/9)
		if i%37 == 0 {
			volume += 400
		}
		wick := 0.8 + 0.3*math.Abs(math.Sin(x))
		candles[i] = candle(i, prev, math.Max(prev, c)+wick, math.Min(prev, c)-wick, c, volume)
		prev = c
	}
	return candles
}

// replay drives str the way the bot does: wallet fills first, then the strategy.
// With partials, every candle is preceded by an in-progress version of itself.
func replay(t *testing.T, str strategy.Strategy, broker *recorder, candles []core.Candle, partials bool) *strategy.Controller {
	t.Helper()
	ctx := context.Background()

	controller := strategy.NewStrategyController(testPair, str, broker, testLogger(t))
	controller.Start()

	for _, c := range candles {
		if partials {
			partial := c
			partial.Complete = false
			partial.Close = (c.Open + c.Close) / 2
			broker.OnCandle(partial)
			controller.OnPartialCandle(ctx, partial)
		}
		broker.OnCandle(c)
		controller.OnCandle(ctx, c)
	}
	return controller
}

func TestRegister(t *testing.T) {
	r := strategy.NewRegistry()
	require.NoError(t, Register(r))

	names := r.Names()
	assert.Len(t, names, 36)
	assert.Contains(t, names, "ema_cross")
	assert.Contains(t, names, "portfolio_rebalance")
	for _, preset := range []string{"engulfing", "hammer", "morning_star", "three_soldiers", "piercing"} {
		assert.Contains(t, names, preset)
	}

	assert.ErrorIs(t, Register(r), core.ErrDuplicateStrategy)
}

func TestDefinitions_Defaults(t *testing.T) {
	r := NewRegistry()

	for _, def := range r.Definitions() {
		t.Run(def.Name, func(t *testing.T) {
			assert.NotEmpty(t, def.Description)
			assert.NotEmpty(t, def.Tags)

			params := def.Parameters()
			seen := make(map[string]bool, len(params))
			for _, p := range params {
				assert.False(t, seen[p.Name], "duplicated parameter %s", p.Name)
				seen[p.Name] = true
				assert.NotNil(t, p.Default, p.Name)
			}
			assert.True(t, seen["timeframe"])
			assert.True(t, seen["position_size"])

			instance, err := r.New(def.Name, nil)
			require.NoError(t, err)
			assert.Positive(t, instance.WarmupPeriod())
			assert.NotEmpty(t, instance.Timeframe())
		})
	}
}

func TestDefinitions_Replay(t *testing.T) {
	r := NewRegistry()
	candles := synthetic(2000)

	// single formation presets rarely complete on smooth waves; they are
	// covered by TestPatternPresets_Trade
	silent := map[string]bool{
		"hammer":       true,
		"morning_star": true,
		"piercing":     true,
	}

	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			instance, err := r.New(name, core.ParameterSet{"timeframe": "1h"})
			require.NoError(t, err)

			broker := newRecorder(t, exchange.WithPaperFee(0.001, 0.001))
			require.NotPanics(t, func() {
				controller := replay(t, instance, broker, candles, true)
				sample := controller.Dataframe().Sample(instance.WarmupPeriod())
				instance.Indicators(&sample)
			})

			asset, quote := broker.position(t)
			assert.GreaterOrEqual(t, asset, 0.0)
			assert.GreaterOrEqual(t, quote, 0.0)
			if silent[name] {
				return
			}
			require.NotEmpty(t, broker.orders)
			assert.Equal(t, core.SideTypeBuy, broker.orders[0].Side, "the wallet starts without the asset")
		})
	}
}

// sine is a clean wave around 100 with a period of about 94 candles.
func sine(n int) []core.Candle {
	candles := make([]core.Candle, n)
	prev := 100.0
	for i := range candles {
		c := 100 + 20*math.Sin(float64(i)/15)
		candles[i] = candle(i, prev, math.Max(prev, c)+0.3, math.Min(prev, c)-0.3, c, 100)
		prev = c
	}
	return candles
}

// climbing reports whether the sine wave climbs at the candle the order was placed on.
func climbing(order core.Order) bool {
	i := order.CreatedAt.Sub(seriesStart) / time.Hour
	return math.Cos(float64(i)/15) > 0
}

func TestDefinitions_TradeDirection(t *testing.T) {
	r := NewRegistry()
	candles := sine(1000)

	t.Run("oscillators buy weakness and sell strength", func(t *testing.T) {
		for _, name := range []string{"rsi_threshold", "williams_r", "cci_reversal"} {
			instance, err := r.New(name, nil)
			require.NoError(t, err)

			broker := newRecorder(t)
			replay(t, instance, broker, candles, false)

			require.NotEmpty(t, broker.orders, name)
			assert.Equal(t, core.SideTypeBuy, broker.orders[0].Side, name)
			for _, order := range broker.orders {
				if order.Side == core.SideTypeBuy {
					assert.Less(t, order.Price, 100.0, "%s buy at %s", name, order.CreatedAt)
				} else {
					assert.Greater(t, order.Price, 100.0, "%s sell at %s", name, order.CreatedAt)
				}
			}
		}
	})

	t.Run("trend followers buy rises and sell falls", func(t *testing.T) {
		for _, name := range []string{"ema_cross", "turtle", "supertrend"} {
			instance, err := r.New(name, nil)
			require.NoError(t, err)

			broker := newRecorder(t)
			replay(t, instance, broker, candles, false)

			require.NotEmpty(t, broker.orders, name)
			assert.Equal(t, core.SideTypeBuy, broker.orders[0].Side, name)
			for _, order := range broker.orders {
				assert.Equal(t, order.Side == core.SideTypeBuy, climbing(order), "%s %s at %s", name, order.Side, order.CreatedAt)
			}
		}
	})
}

func TestPatternPresets_Trade(t *testing.T) {
	// flat candles have no body and complete no formation
	flat := make([]core.Candle, 60)
	for i := range flat {
		flat[i] = candle(i, 100, 100.5, 99.5, 100, 100)
	}

	cases := map[string]struct {
		formation []core.Candle
		buyAt     int
		sellAt    int
	}{
		"hammer": {
			formation: []core.Candle{
				candle(60, 100, 100.2, 98.8, 99, 10),
				candle(61, 99, 99.1, 97.9, 98, 10),
				candle(62, 97.5, 98.1, 95, 98, 10), // hammer after two lower closes
				candle(63, 98, 99.2, 97.9, 99, 10),
				candle(64, 99, 100.2, 98.9, 100, 10),
				candle(65, 100.5, 103, 99.9, 100, 10), // shooting star after a rise
			},
			buyAt:  62,
			sellAt: 65,
		},
		"morning_star": {
			formation: []core.Candle{
				candle(60, 100, 100.2, 97.8, 98, 10),
				candle(61, 97.5, 97.7, 97.1, 97.4, 10),
				candle(62, 97.6, 99.6, 97.5, 99.5, 10), // morning star
				candle(63, 99.5, 101.6, 99.4, 101.5, 10),
				candle(64, 102, 102.3, 101.8, 102.1, 10),
				candle(65, 101.9, 102, 99.9, 100, 10), // evening star
			},
			buyAt:  62,
			sellAt: 65,
		},
		"piercing": {
			formation: []core.Candle{
				candle(60, 100, 100.1, 97.9, 98, 10),
				candle(61, 97.5, 99.3, 97.4, 99.2, 10), // piercing line
				candle(62, 99.2, 101.1, 99.1, 101, 10),
				candle(63, 101.5, 101.6, 99.7, 99.8, 10), // dark cloud cover
			},
			buyAt:  61,
			sellAt: 63,
		},
	}

	r := NewRegistry()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			instance, err := r.New(name, nil)
			require.NoError(t, err)

			broker := newRecorder(t)
			replay(t, instance, broker, append(slices.Clone(flat), tc.formation...), false)

			require.Len(t, broker.orders, 2)
			assert.Equal(t, core.SideTypeBuy, broker.orders[0].Side)
			assert.Equal(t, seriesStart.Add(time.Duration(tc.buyAt)*time.Hour), broker.orders[0].CreatedAt)
			assert.Equal(t, core.SideTypeSell, broker.orders[1].Side)
			assert.Equal(t, seriesStart.Add(time.Duration(tc.sellAt)*time.Hour), broker.orders[1].CreatedAt)

			asset, _ := broker.position(t)
			assert.InDelta(t, 0, asset, 1e-9)
		})
	}
}

func TestRegistry_RejectsInvalidParameters(t *testing.T) {
	r := NewRegistry()

	cases := map[string]core.ParameterSet{
		"ema_cross":       {"ema_length": 30, "sma_length": 20},
		"ma_cross":        {"ma_type": "hull"},
		"triple_ema":      {"short": 20, "medium": 10},
		"rsi_threshold":   {"oversold": 50, "overbought": 50},
		"turtle":          {"entry": 10, "exit": 20},
		"psquare_channel": {"lower": 0.4, "upper": 0.6, "unknown": 1},
		"candle_pattern":  {"bullish": "shooting_star"},
		"hammer":          {"bearish": "not_a_pattern"},
		"grid":            {"levels": 20, "spacing": 0.06},
		"dca":             {"amount": "lots"},
	}

	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.New(name, params)
			assert.ErrorIs(t, err, core.ErrInvalidParameter)
		})
	}
}

func TestEMACross_TradesBothWays(t *testing.T) {
	broker := newRecorder(t)
	replay(t, NewEMACross(), broker, synthetic(400), false)

	buys := broker.count(core.SideTypeBuy, core.OrderTypeMarket)
	sells := broker.count(core.SideTypeSell, core.OrderTypeMarket)
	assert.Positive(t, buys)
	assert.Positive(t, sells)
	assert.LessOrEqual(t, buys-sells, 1)

	for _, quote := range broker.quotes {
		assert.Greater(t, quote, dustValue)
	}
}

func TestCandlePattern_Presets(t *testing.T) {
	s := newPatternPreset("bullish_engulfing", "bearish_engulfing")()
	require.Len(t, s.buyPatterns, 1)
	require.Len(t, s.sellPatterns, 1)
	assert.Equal(t, "bullish_engulfing", s.buyPatterns[0].Name)

	all := NewCandlePattern()
	assert.Len(t, all.buyPatterns, 6)
	assert.Len(t, all.sellPatterns, 6)

	require.NoError(t, all.SetParameterValues(core.ParameterSet{"bullish": "hammer, piercing_line", "bearish": ""}))
	assert.Len(t, all.buyPatterns, 2)
	assert.Empty(t, all.sellPatterns)
}

func TestLookback(t *testing.T) {
	assert.Equal(t, 10, lookback(10, "ema"))
	assert.Equal(t, 20, lookback(10, "dema"))
	assert.Equal(t, 30, lookback(10, "tema"))
	assert.Equal(t, 60, lookback(10, "t3"))
	assert.Equal(t, 11, lookback(10, "kama"))
}
