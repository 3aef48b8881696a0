package optimizer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/raykavin/stratbook/pkg/logger/zerolog"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	zl, err := zerolog.NewWithWriter(io.Discard, "info", "", false, true)
	require.NoError(t, err)
	return zerolog.NewAdapter(zl)
}

// mockEvaluator scores known sets from resultMap and everything else with
// profit = 10*emaLength - 5*smaLength.
type mockEvaluator struct {
	resultMap map[string]map[string]float64
	err       error
}

func (m *mockEvaluator) Evaluate(_ context.Context, params core.ParameterSet) (*core.OptimizerResult, error) {
	if m.err != nil {
		return nil, m.err
	}

	metrics, ok := m.resultMap[FormatParameterSet(params)]
	if !ok {
		metrics = map[string]float64{"win_rate": 0.5}
		if ema, ok := params["emaLength"].(int); ok {
			metrics["profit"] += float64(ema) * 10
		}
		if sma, ok := params["smaLength"].(int); ok {
			metrics["profit"] -= float64(sma) * 5
		}
	}

	return &core.OptimizerResult{
		Parameters: params,
		Metrics:    metrics,
		Duration:   time.Millisecond,
	}, nil
}

func emaParameters() []core.Parameter {
	return []core.Parameter{
		{Name: "emaLength", Default: 9, Min: 9, Max: 14, Step: 5, Type: core.TypeInt},
		{Name: "smaLength", Default: 21, Min: 21, Max: 28, Step: 7, Type: core.TypeInt},
	}
}

func TestGridSearch(t *testing.T) {
	evaluator := &mockEvaluator{resultMap: map[string]map[string]float64{
		"{emaLength: 9, smaLength: 21}":  {"profit": 100, "win_rate": 0.6},
		"{emaLength: 14, smaLength: 28}": {"profit": 150, "win_rate": 0.7},
	}}

	config := NewConfig().
		WithParameters(emaParameters()...).
		WithMaxIterations(10).
		WithParallelism(2).
		WithLogger(testLogger(t))

	grid, err := NewGridSearch(config)
	require.NoError(t, err)

	results, err := grid.Optimize(context.Background(), evaluator, core.MetricProfit, true)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, 150.0, results[0].Metrics["profit"])
	assert.Equal(t, 100.0, results[1].Metrics["profit"])
	assert.Equal(t, -50.0, results[3].Metrics["profit"])

	ids := make(map[string]bool)
	for _, result := range results {
		require.NotEmpty(t, result.ID)
		ids[result.ID] = true
	}
	assert.Len(t, ids, 4)
}

func TestGridSearch_Minimize(t *testing.T) {
	grid, err := NewGridSearch(NewConfig().WithParameters(emaParameters()...))
	require.NoError(t, err)

	results, err := grid.Optimize(context.Background(), &mockEvaluator{}, core.MetricProfit, false)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, -50.0, results[0].Metrics["profit"])
	assert.Equal(t, 35.0, results[3].Metrics["profit"])
}

func TestGridSearch_MaxIterations(t *testing.T) {
	grid, err := NewGridSearch(NewConfig().WithParameters(emaParameters()...).WithMaxIterations(3))
	require.NoError(t, err)

	results, err := grid.Optimize(context.Background(), &mockEvaluator{}, core.MetricProfit, true)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestGridSearch_ParameterSets(t *testing.T) {
	grid, err := NewGridSearch(NewConfig().WithParameters(
		core.Parameter{Name: "ratio", Min: 0.1, Max: 0.3, Step: 0.1, Type: core.TypeFloat},
		core.Parameter{Name: "ma", Options: []any{"sma", "ema"}, Type: core.TypeCategorical},
		core.Parameter{Name: "filter", Type: core.TypeBool},
	))
	require.NoError(t, err)

	sets, err := grid.parameterSets()
	require.NoError(t, err)
	require.Len(t, sets, 12)
	assert.Equal(t, core.ParameterSet{"ratio": 0.1, "ma": "sma", "filter": true}, sets[0])
	assert.Equal(t, core.ParameterSet{"ratio": 0.3, "ma": "ema", "filter": false}, sets[11])
}

func TestGridSearch_InvalidParameters(t *testing.T) {
	_, err := NewGridSearch(NewConfig())
	require.Error(t, err)

	_, err = NewGridSearch(nil)
	require.Error(t, err)

	for _, param := range []core.Parameter{
		{Name: "mode", Type: core.TypeCategorical},
		{Name: "period", Min: 1, Max: 5, Step: 0, Type: core.TypeInt},
		{Name: "ratio", Min: 0.1, Max: 0.5, Type: core.TypeFloat},
		{Name: "period", Max: 5, Type: core.TypeInt},
	} {
		grid, err := NewGridSearch(NewConfig().WithParameters(param))
		require.NoError(t, err)

		_, err = grid.Optimize(context.Background(), &mockEvaluator{}, core.MetricProfit, true)
		assert.Error(t, err, param.Name)
	}
}

func TestRandomSearch(t *testing.T) {
	config := NewConfig().
		WithParameters(
			core.Parameter{Name: "emaLength", Default: 9, Min: 3, Max: 50, Type: core.TypeInt},
			core.Parameter{Name: "ratio", Default: 0.5, Min: 0.1, Max: 1.0, Type: core.TypeFloat},
			core.Parameter{Name: "ma", Default: "sma", Options: []any{"sma", "ema"}, Type: core.TypeCategorical},
			core.Parameter{Name: "fixed", Default: 7, Type: core.TypeInt},
		).
		WithMaxIterations(20).
		WithParallelism(4).
		WithSeed(42)

	search, err := NewRandomSearch(config)
	require.NoError(t, err)

	results, err := search.Optimize(context.Background(), &mockEvaluator{}, core.MetricProfit, true)
	require.NoError(t, err)
	require.Len(t, results, 20)

	for _, result := range results {
		ema := result.Parameters["emaLength"].(int)
		assert.GreaterOrEqual(t, ema, 3)
		assert.LessOrEqual(t, ema, 50)

		ratio := result.Parameters["ratio"].(float64)
		assert.GreaterOrEqual(t, ratio, 0.1)
		assert.LessOrEqual(t, ratio, 1.0)

		assert.Contains(t, []any{"sma", "ema"}, result.Parameters["ma"])
		assert.Equal(t, 7, result.Parameters["fixed"])
	}

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Metrics["profit"], results[i].Metrics["profit"])
	}
}

func TestRandomSearch_Seeded(t *testing.T) {
	draw := func() []string {
		config := NewConfig().WithParameters(emaParameters()...).WithMaxIterations(8).WithSeed(7)
		search, err := NewRandomSearch(config)
		require.NoError(t, err)

		results, err := search.Optimize(context.Background(), &mockEvaluator{}, core.MetricProfit, true)
		require.NoError(t, err)

		sets := make([]string, len(results))
		for i, result := range results {
			sets[i] = FormatParameterSet(result.Parameters)
		}
		sort.Strings(sets)
		return sets
	}

	assert.Equal(t, draw(), draw())
}

func TestOptimize_EvaluationError(t *testing.T) {
	boom := errors.New("boom")
	grid, err := NewGridSearch(NewConfig().WithParameters(emaParameters()...).WithParallelism(2))
	require.NoError(t, err)

	_, err = grid.Optimize(context.Background(), &mockEvaluator{err: boom}, core.MetricProfit, true)
	require.ErrorIs(t, err, boom)

	_, err = grid.Optimize(context.Background(), nil, core.MetricProfit, true)
	require.Error(t, err)
}

func TestOptimize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	search, err := NewRandomSearch(NewConfig().WithParameters(emaParameters()...))
	require.NoError(t, err)

	_, err = search.Optimize(ctx, &mockEvaluator{}, core.MetricProfit, true)
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidateParameterSet(t *testing.T) {
	definitions := emaParameters()

	require.NoError(t, ValidateParameterSet(core.ParameterSet{"emaLength": 10, "smaLength": 21}, definitions))

	err := ValidateParameterSet(core.ParameterSet{"emaLength": 10}, definitions)
	require.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "smaLength")

	err = ValidateParameterSet(core.ParameterSet{"emaLength": 100, "smaLength": 21}, definitions)
	require.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestSearchable(t *testing.T) {
	params := []core.Parameter{
		{Name: "period", Min: 1, Max: 10, Type: core.TypeInt},
		{Name: "amount", Default: 10.0, Type: core.TypeFloat},
		{Name: "ma", Options: []any{"sma"}, Type: core.TypeCategorical},
		{Name: "label", Default: "x", Type: core.TypeString},
		{Name: "filter", Type: core.TypeBool},
	}

	names := func(params []core.Parameter) []string {
		out := make([]string, len(params))
		for i, p := range params {
			out[i] = p.Name
		}
		return out
	}

	assert.Equal(t, []string{"period", "ma", "filter"}, names(Searchable(params)))
	assert.Equal(t, []string{"ma"}, names(Searchable(params, "ma", "amount")))
}

func TestSortResults(t *testing.T) {
	results := []*core.OptimizerResult{
		{ID: "a", Metrics: map[string]float64{"sqn": 1}},
		{ID: "b", Metrics: map[string]float64{}},
		{ID: "c", Metrics: map[string]float64{"sqn": 3}},
	}

	SortResults(results, core.MetricSQN, true)
	assert.Equal(t, "c", results[0].ID)
	assert.Equal(t, "b", results[2].ID)

	SortResults(results, core.MetricSQN, false)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[2].ID)
}

func TestWriteResultsCSV(t *testing.T) {
	results := []*core.OptimizerResult{
		{
			ID:         "first",
			Parameters: core.ParameterSet{"period": 10, "ratio": 0.5},
			Metrics:    map[string]float64{"profit": 12.5},
			Duration:   time.Second,
		},
		{
			ID:         "second",
			Parameters: core.ParameterSet{"period": 20},
			Metrics:    map[string]float64{"profit": -1, "sqn": 0.25},
			Duration:   2 * time.Second,
		},
	}

	out := &bytes.Buffer{}
	require.NoError(t, WriteResultsCSV(out, results))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "rank,id,duration,period,ratio,profit,sqn", lines[0])
	assert.Equal(t, "1,first,1s,10,0.5000,12.5000,", lines[1])
	assert.Equal(t, "2,second,2s,20,,-1.0000,0.2500", lines[2])
}

func TestPrintResults(t *testing.T) {
	out := &bytes.Buffer{}
	PrintResults(out, nil, core.MetricProfit, 5)
	assert.Contains(t, out.String(), "No results")

	out.Reset()
	results := []*core.OptimizerResult{
		{ID: "0123456789", Parameters: core.ParameterSet{"period": 10}, Metrics: map[string]float64{"profit": 3}},
		{ID: "abcdefghij", Parameters: core.ParameterSet{"period": 20}, Metrics: map[string]float64{"profit": 1}},
	}
	PrintResults(out, results, core.MetricProfit, 1)

	assert.Contains(t, out.String(), "Top 1 Results (by profit)")
	assert.Contains(t, out.String(), "01234567")
	assert.Contains(t, out.String(), "{period: 10}")
	assert.NotContains(t, out.String(), "abcdefgh")
}

func TestFormatParameterSet(t *testing.T) {
	assert.Equal(t, "{a: 1, b: x}", FormatParameterSet(core.ParameterSet{"b": "x", "a": 1}))
	assert.Equal(t, "{}", FormatParameterSet(nil))
}

// roundTrip buys on its buy_at-th candle and sells everything on its sell_at-th.
type roundTrip struct {
	buyAt, sellAt int
	calls         int
}

func (r *roundTrip) Timeframe() string                                { return "1m" }
func (r *roundTrip) WarmupPeriod() int                                { return 2 }
func (r *roundTrip) Indicators(*core.Dataframe) []core.ChartIndicator { return nil }

func (r *roundTrip) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	r.calls++
	switch r.calls {
	case r.buyAt:
		_, _ = broker.CreateOrderMarketQuote(ctx, core.SideTypeBuy, df.Pair, 100)
	case r.sellAt:
		if asset, _, err := broker.Position(ctx, df.Pair); err == nil && asset > 0 {
			_, _ = broker.CreateOrderMarket(ctx, core.SideTypeSell, df.Pair, asset)
		}
	}
}

func (r *roundTrip) GetParameters() []core.Parameter {
	return []core.Parameter{
		{Name: "buy_at", Default: 1, Min: 1, Max: 10, Step: 1, Type: core.TypeInt},
		{Name: "sell_at", Default: 5, Min: 2, Max: 20, Step: 1, Type: core.TypeInt},
	}
}

func (r *roundTrip) SetParameterValues(params core.ParameterSet) error {
	return strategy.ReadParams(params).Int("buy_at", &r.buyAt).Int("sell_at", &r.sellAt).Err()
}

func TestBacktestStrategyEvaluator(t *testing.T) {
	log := testLogger(t)

	feed, err := exchange.NewCSVFeed("1m", exchange.PairFeed{
		Pair:      "BTCUSDT",
		File:      "../exchange/testdata/btc-1m.csv",
		Timeframe: "1m",
	})
	require.NoError(t, err)

	registry := strategy.NewRegistry()
	require.NoError(t, registry.Register(strategy.Definition{
		Name: "round_trip",
		New:  func() strategy.Tunable { return &roundTrip{buyAt: 1, sellAt: 5} },
	}))

	evaluator := NewBacktestStrategyEvaluator(
		RegistryStrategyFactory(registry, "round_trip"),
		core.Settings{Pairs: []string{"BTCUSDT"}},
		feed, log, 1000, "USDT",
		WithWalletOptions(exchange.WithPaperFee(0, 0)),
	)

	result, err := evaluator.Evaluate(context.Background(), core.ParameterSet{"sell_at": 9})
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Metrics[string(core.MetricTradeCount)])
	assert.Equal(t, 1.0, result.Metrics[string(core.MetricWinRate)])
	assert.Greater(t, result.Metrics[string(core.MetricProfit)], 0.0)
	assert.GreaterOrEqual(t, result.Metrics[string(core.MetricDrawdown)], 0.0)
	assert.Greater(t, result.Metrics["final_balance"], 1000.0)
	assert.Equal(t, 1.0, result.Metrics["BTCUSDT_trades"])

	_, err = evaluator.Evaluate(context.Background(), core.ParameterSet{"buy_at": 0})
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	grid, err := NewGridSearch(NewConfig().
		WithParameters(core.Parameter{Name: "sell_at", Min: 3, Max: 9, Step: 3, Type: core.TypeInt}).
		WithParallelism(3))
	require.NoError(t, err)

	results, err := grid.Optimize(context.Background(), evaluator, core.MetricProfit, true)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// prices only rise, so holding longest wins
	assert.Equal(t, 9, results[0].Parameters["sell_at"])
}
