package strategies

import (
	"context"
	"testing"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_BuysAndTakesProfit(t *testing.T) {
	s := NewGrid()
	require.NoError(t, s.SetParameterValues(core.ParameterSet{"levels": 2, "spacing": 0.01}))

	broker := newRecorder(t)
	candles := []core.Candle{
		candle(0, 100, 100.2, 99.8, 100, 10),
		candle(1, 100, 100.2, 99.8, 100, 10),    // anchors buys at 98 and 99
		candle(2, 100, 100.1, 98.8, 99.2, 10),   // fills 99, sells at 100
		candle(3, 99.2, 100.5, 99.5, 100.2, 10), // fills the sell, buys 99 again
	}
	replay(t, s, broker, candles, false)

	assert.Equal(t, 3, broker.count(core.SideTypeBuy, core.OrderTypeLimit))
	assert.Equal(t, 1, broker.count(core.SideTypeSell, core.OrderTypeLimit))

	asset, quote := broker.position(t)
	assert.InDelta(t, 0, asset, 1e-9)
	assert.InDelta(t, 10000+2500.0/99, quote, 1e-6)

	l := s.ladders[testPair]
	require.NotNil(t, l)
	assert.Len(t, l.buys, 2)
	assert.Empty(t, l.sells)
}

func TestGrid_RetriesRejectedTakeProfit(t *testing.T) {
	s := NewGrid()
	require.NoError(t, s.SetParameterValues(core.ParameterSet{"levels": 2, "spacing": 0.01}))

	broker := newRecorder(t)
	broker.rejectSells = 1
	candles := []core.Candle{
		candle(0, 100, 100.2, 99.8, 100, 10),
		candle(1, 100, 100.2, 99.8, 100, 10),
		candle(2, 100, 100.1, 98.8, 99.2, 10),   // fills 99, the sell is rejected
		candle(3, 99.2, 99.8, 99.5, 99.6, 10),   // sells at 100 again
		candle(4, 99.6, 100.5, 99.5, 100.2, 10), // fills the sell, buys 99 again
	}
	replay(t, s, broker, candles, false)

	assert.Zero(t, broker.rejectSells)
	assert.Equal(t, 3, broker.count(core.SideTypeBuy, core.OrderTypeLimit))
	assert.Equal(t, 1, broker.count(core.SideTypeSell, core.OrderTypeLimit))

	asset, quote := broker.position(t)
	assert.InDelta(t, 0, asset, 1e-9)
	assert.InDelta(t, 10000+2500.0/99, quote, 1e-6)

	l := s.ladders[testPair]
	require.NotNil(t, l)
	assert.Len(t, l.buys, 2)
	assert.Empty(t, l.sells)
	assert.Empty(t, l.unsold)
}

func TestGrid_ReanchorsOutsideTheLadder(t *testing.T) {
	s := NewGrid()
	require.NoError(t, s.SetParameterValues(core.ParameterSet{"levels": 2, "spacing": 0.01}))

	broker := newRecorder(t)
	candles := []core.Candle{
		candle(0, 100, 100.2, 99.8, 100, 10),
		candle(1, 100, 100.2, 99.8, 100, 10),
		candle(2, 100, 110.5, 100, 110, 10),
	}
	replay(t, s, broker, candles, false)

	assert.Equal(t, 4, broker.count(core.SideTypeBuy, core.OrderTypeLimit))
	assert.InDelta(t, 110, s.ladders[testPair].grid.Center, 1e-9)

	account, err := broker.Account(context.Background())
	require.NoError(t, err)
	_, usdt := account.Balance("BTC", "USDT")
	assert.InDelta(t, 10000, usdt.Total(), 1e-9)
	assert.InDelta(t, 5000, usdt.Lock, 1e-6)
}

func TestDCA_AveragesAndTakesProfit(t *testing.T) {
	s := NewDCA()
	require.NoError(t, s.SetParameterValues(core.ParameterSet{"interval": 3, "amount": 100.0, "take_profit": 0.1}))

	broker := newRecorder(t)
	replay(t, s, broker, closes(100, 100, 100, 100, 100, 111), false)

	assert.Equal(t, []float64{100, 100}, broker.quotes)
	assert.Equal(t, 1, broker.count(core.SideTypeSell, core.OrderTypeMarket))

	asset, quote := broker.position(t)
	assert.InDelta(t, 0, asset, 1e-9)
	assert.InDelta(t, 10022, quote, 1e-6)
	assert.Zero(t, s.plans[testPair].orders)
}

func TestMartingale_DoublesAfterLoss(t *testing.T) {
	s := NewMartingale()
	s.rsiPeriod = 2

	broker := newRecorder(t)
	// the rebound to 96 crosses RSI over 30, 90 hits the stop, 92 crosses again
	replay(t, s, broker, closes(100, 99, 98, 97, 96, 95, 96, 90, 92), false)

	assert.Equal(t, []float64{50, 100}, broker.quotes)
	assert.Equal(t, 1, broker.count(core.SideTypeSell, core.OrderTypeMarket))
	assert.Equal(t, 1, s.sizer(testPair).Step())
	assert.InDelta(t, 92, s.entries[testPair], 1e-9)
}

func TestPortfolioRebalance_TracksTargetWeight(t *testing.T) {
	s := NewPortfolioRebalance()
	require.NoError(t, s.SetParameterValues(core.ParameterSet{"interval": 1, "target_weight": 0.5, "threshold": 0.05}))

	broker := newRecorder(t)
	replay(t, s, broker, closes(100, 100, 200), false)

	// 5000 USDT buys 50 BTC, then the doubled price sells 12.5 BTC back to 50%
	asset, quote := broker.position(t)
	assert.InDelta(t, 37.5, asset, 1e-6)
	assert.InDelta(t, 7500, quote, 1e-6)
	assert.InDelta(t, 10000, s.tracker.values[testPair], 1e-6)
}

func TestPSquareChannel_BuysLowSellsHigh(t *testing.T) {
	s := NewPSquareChannel()

	values := make([]float64, 0, 53)
	for i := 0; i < 50; i++ {
		values = append(values, 100+float64((i*7)%50))
	}
	values = append(values, 125, 90, 160)

	broker := newRecorder(t)
	replay(t, s, broker, closes(values...), false)

	require.Len(t, broker.orders, 2)
	assert.Equal(t, core.SideTypeBuy, broker.orders[0].Side)
	assert.InDelta(t, 90, broker.orders[0].Price, 1e-9)
	assert.Equal(t, core.SideTypeSell, broker.orders[1].Side)
	assert.InDelta(t, 160, broker.orders[1].Price, 1e-9)
	assert.Equal(t, 53, s.channels[testPair].lower.Count())
}

func TestTrailingStop_ExitsOnPartialCandle(t *testing.T) {
	ctx := context.Background()
	s := NewTrailingStop()
	broker := newRecorder(t, exchange.WithPaperAsset("BTC", 1))

	s.stop(testPair).Start(100, 97)

	rising := closes(100, 104)[1]
	broker.OnCandle(rising)
	df := &core.Dataframe{Pair: testPair, Close: core.Series[float64]{100, 104}}
	s.OnPartialCandle(ctx, df, broker)
	assert.InDelta(t, 101, s.stop(testPair).Level(), 1e-9)
	assert.Empty(t, broker.orders)

	falling := closes(100, 104, 100.5)[2]
	falling.Complete = false
	broker.OnCandle(falling)
	df.Close = append(df.Close, 100.5)
	s.OnPartialCandle(ctx, df, broker)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, core.SideTypeSell, broker.orders[0].Side)
	assert.False(t, s.stop(testPair).Active())

	asset, _ := broker.position(t)
	assert.Zero(t, asset)
}

func TestStops_CancelBeforeExit(t *testing.T) {
	ctx := context.Background()
	s := NewTripleEMA()
	broker := newRecorder(t)

	broker.OnCandle(closes(100)[0])
	df := &core.Dataframe{Pair: testPair, Close: core.Series[float64]{100}}
	order, ok := buyQuote(ctx, df, broker, 1000)
	require.True(t, ok)

	s.stops.place(ctx, df, broker, order.Quantity, 97)
	require.Contains(t, s.stops, testPair)

	s.stops.cancel(ctx, df, broker)
	assert.NotContains(t, s.stops, testPair)

	stop, err := broker.Order(ctx, testPair, broker.orders[1].ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusTypeCanceled, stop.Status)

	h, ok := positionOf(ctx, df, broker)
	require.True(t, ok)
	_, ok = sellAll(ctx, df, broker, h)
	assert.True(t, ok)
}
