package strategies

import (
	"context"
	"math"

	"github.com/raykavin/stratbook"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
)

// PortfolioRebalance keeps every traded pair near target_weight of the equity
// held in its quote asset. Holdings are revalued on each candle and corrected
// every interval candles once they drift more than threshold from the target.
type PortfolioRebalance struct {
	base
	targetWeight float64
	threshold    float64
	interval     int
	tracker      *portfolioTracker
}

// portfolioTracker remembers the last known value of every pair's holding and
// the last quote balance seen for every quote asset.
type portfolioTracker struct {
	values  map[string]float64
	quotes  map[string]float64
	candles map[string]int
}

func newPortfolioTracker() *portfolioTracker {
	return &portfolioTracker{
		values:  make(map[string]float64),
		quotes:  make(map[string]float64),
		candles: make(map[string]int),
	}
}

func (t *portfolioTracker) record(pair string, h holding) {
	_, quote := exchange.SplitAssetQuote(pair)
	t.values[pair] = h.asset * h.price
	t.quotes[quote] = h.quote
	t.candles[pair]++
}

// equity is the quote balance plus the value of every pair quoted in it.
func (t *portfolioTracker) equity(pair string) float64 {
	_, quote := exchange.SplitAssetQuote(pair)
	total := t.quotes[quote]
	for other, value := range t.values {
		if _, q := exchange.SplitAssetQuote(other); q == quote {
			total += value
		}
	}
	return total
}

// NewPortfolioRebalance creates a new instance of PortfolioRebalance with default parameters
func NewPortfolioRebalance() *PortfolioRebalance {
	return &PortfolioRebalance{
		base:         newBase("1d"),
		targetWeight: 0.5,
		threshold:    0.05,
		interval:     7,
		tracker:      newPortfolioTracker(),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *PortfolioRebalance) WarmupPeriod() int {
	return 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *PortfolioRebalance) Indicators(df *core.Dataframe) []core.ChartIndicator {
	return nil
}

// OnCandle is called for each new candle and implements the trading logic
func (s *PortfolioRebalance) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	s.tracker.record(df.Pair, h)
	if (s.tracker.candles[df.Pair]-1)%s.interval != 0 {
		return
	}

	equity := s.tracker.equity(df.Pair)
	if equity <= 0 {
		return
	}

	drift := s.tracker.values[df.Pair]/equity - s.targetWeight
	if math.Abs(drift) <= s.threshold {
		return
	}

	amount := math.Abs(drift) * equity
	if amount < dustValue {
		return
	}

	if drift < 0 {
		buyQuote(ctx, df, broker, math.Min(amount, h.quote))
		return
	}

	size := math.Min(amount/h.price, h.asset)
	if _, err := broker.CreateOrderMarket(ctx, core.SideTypeSell, df.Pair, size); err != nil {
		stratbook.DefaultLog.WithFields(map[string]any{
			"pair":  df.Pair,
			"side":  core.SideTypeSell,
			"asset": size,
			"drift": drift,
		}).Error(err)
	}
}

// GetParameters returns the tunable parameters of PortfolioRebalance
func (s *PortfolioRebalance) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "target_weight", Description: "Share of the quote equity held in each pair", Default: s.targetWeight, Min: 0.05, Max: 1.0, Step: 0.05, Type: core.TypeFloat},
		core.Parameter{Name: "threshold", Description: "Drift from the target that triggers a rebalance", Default: s.threshold, Min: 0.01, Max: 0.5, Step: 0.01, Type: core.TypeFloat},
		core.Parameter{Name: "interval", Description: "Candles between rebalance checks", Default: s.interval, Min: 1, Max: 60, Step: 1, Type: core.TypeInt},
	)
}

// SetParameterValues applies params to the strategy
func (s *PortfolioRebalance) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Float("target_weight", &s.targetWeight).
		Float("threshold", &s.threshold).
		Int("interval", &s.interval).
		Err()
	if err != nil {
		return err
	}
	s.tracker = newPortfolioTracker()
	return nil
}
