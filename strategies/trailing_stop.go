package strategies

import (
	"context"
	"fmt"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
	"github.com/raykavin/stratbook/pkg/strategy"
)

// TrailingStop enters on an EMA crossing above an SMA and leaves only through
// a trailing stop, which is checked on partial candles as well.
type TrailingStop struct {
	base
	emaPeriod int
	smaPeriod int
	distance  float64
	trailing  map[string]*strategy.TrailingStop
}

// NewTrailingStop creates a new instance of TrailingStop with default parameters
func NewTrailingStop() *TrailingStop {
	return &TrailingStop{
		base:      newBase("1h"),
		emaPeriod: 8,
		smaPeriod: 21,
		distance:  0.03,
		trailing:  make(map[string]*strategy.TrailingStop),
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *TrailingStop) WarmupPeriod() int {
	return s.smaPeriod * 2
}

func (s *TrailingStop) stop(pair string) *strategy.TrailingStop {
	t, ok := s.trailing[pair]
	if !ok {
		t = strategy.NewTrailingStop()
		s.trailing[pair] = t
	}
	return t
}

// Indicators calculates and returns the indicators used by this strategy
func (s *TrailingStop) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["ema"] = indicator.EMA(df.Close, s.emaPeriod)
	df.Metadata["sma"] = indicator.SMA(df.Close, s.smaPeriod)

	return []core.ChartIndicator{
		overlay(df, "Moving Averages",
			line(fmt.Sprintf("EMA %d", s.emaPeriod), "red", df.Metadata["ema"]),
			line(fmt.Sprintf("SMA %d", s.smaPeriod), "blue", df.Metadata["sma"]),
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *TrailingStop) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	h, ok := positionOf(ctx, df, broker)
	if !ok {
		return
	}

	trailing := s.stop(df.Pair)
	if h.open() {
		s.follow(ctx, df, broker, h, trailing)
		return
	}

	trailing.Stop()
	if df.Metadata["ema"].Crossover(df.Metadata["sma"]) {
		if _, ok := s.buy(ctx, df, broker, h); ok {
			trailing.Start(h.price, h.price*(1-s.distance))
		}
	}
}

// OnPartialCandle is called for each in-progress candle and checks the exit
func (s *TrailingStop) OnPartialCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	trailing := s.stop(df.Pair)
	if !trailing.Active() {
		return
	}

	if h, ok := positionOf(ctx, df, broker); ok && h.open() {
		s.follow(ctx, df, broker, h, trailing)
	}
}

// follow moves the stop with the price and sells once it is hit.
func (s *TrailingStop) follow(ctx context.Context, df *core.Dataframe, broker core.Broker, h holding, trailing *strategy.TrailingStop) {
	if !trailing.Active() {
		// position opened outside of this strategy, protect it from here
		trailing.Start(h.price, h.price*(1-s.distance))
		return
	}

	if trailing.Update(h.price) {
		if _, ok := sellAll(ctx, df, broker, h); ok {
			trailing.Stop()
		}
	}
}

// GetParameters returns the tunable parameters of TrailingStop
func (s *TrailingStop) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "ema_period", Description: "Entry EMA period", Default: s.emaPeriod, Min: 2, Max: 50, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "sma_period", Description: "Entry SMA period", Default: s.smaPeriod, Min: 5, Max: 200, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "distance", Description: "Trailing distance below the high, as a fraction", Default: s.distance, Min: 0.005, Max: 0.2, Step: 0.005, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *TrailingStop) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("ema_period", &s.emaPeriod).
		Int("sma_period", &s.smaPeriod).
		Float("distance", &s.distance).
		Err()
	if err != nil {
		return err
	}
	if s.emaPeriod >= s.smaPeriod {
		return invalidParameter("ema_period %d must be below sma_period %d", s.emaPeriod, s.smaPeriod)
	}
	return nil
}
