package strategies

import (
	"context"
	"math"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// HurstRegime switches behaviour with the rolling Hurst exponent: it follows
// EMA breaks while the market trends and fades z-score extremes while it
// mean reverts. Between both thresholds only exits are taken.
type HurstRegime struct {
	base
	period      int
	minWindow   int
	trendLevel  float64
	revertLevel float64
	emaPeriod   int
	zPeriod     int
	zEntry      float64
}

// NewHurstRegime creates a new instance of HurstRegime with default parameters
func NewHurstRegime() *HurstRegime {
	return &HurstRegime{
		base:        newBase("4h"),
		period:      100,
		minWindow:   8,
		trendLevel:  0.55,
		revertLevel: 0.45,
		emaPeriod:   20,
		zPeriod:     20,
		zEntry:      2,
	}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *HurstRegime) WarmupPeriod() int {
	return s.period + max(s.emaPeriod, s.zPeriod) + 1
}

// Indicators calculates and returns the indicators used by this strategy
func (s *HurstRegime) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["hurst"] = indicator.RollingHurst(df.Close, s.period, s.minWindow)
	df.Metadata["ema"] = indicator.EMA(df.Close, s.emaPeriod)
	df.Metadata["zscore"] = indicator.ZScore(df.Close, s.zPeriod)

	return []core.ChartIndicator{
		overlay(df, "Trend", line("EMA", "orange", df.Metadata["ema"])),
		pane(df, "Hurst",
			line("Hurst", "black", df.Metadata["hurst"]),
			line("Trend", "green", constant(df, s.trendLevel)),
			line("Revert", "red", constant(df, s.revertLevel)),
		),
		pane(df, "Z-Score", line("Z", "blue", df.Metadata["zscore"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *HurstRegime) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	hurst := df.Metadata["hurst"].Last(0)
	if math.IsNaN(hurst) {
		return
	}

	ema, z := df.Metadata["ema"], df.Metadata["zscore"]
	trending := hurst > s.trendLevel
	reverting := hurst < s.revertLevel

	buy := (trending && df.Close.Crossover(ema) && ema.Last(0) > ema.Last(1)) ||
		(reverting && z.Below(-s.zEntry))
	sell := (!reverting && df.Close.Crossunder(ema)) || (!trending && z.Above(0))

	s.trade(ctx, df, broker, buy, sell)
}

// GetParameters returns the tunable parameters of HurstRegime
func (s *HurstRegime) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "Hurst window", Default: s.period, Min: 50, Max: 300, Step: 25, Type: core.TypeInt},
		core.Parameter{Name: "min_window", Description: "Smallest rescaled range chunk", Default: s.minWindow, Min: 4, Max: 32, Step: 4, Type: core.TypeInt},
		core.Parameter{Name: "trend_level", Description: "Hurst above which the market trends", Default: s.trendLevel, Min: 0.5, Max: 0.8, Step: 0.05, Type: core.TypeFloat},
		core.Parameter{Name: "revert_level", Description: "Hurst below which the market mean reverts", Default: s.revertLevel, Min: 0.2, Max: 0.5, Step: 0.05, Type: core.TypeFloat},
		core.Parameter{Name: "ema_period", Description: "Trend EMA period", Default: s.emaPeriod, Min: 5, Max: 100, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "z_period", Description: "Z-score window", Default: s.zPeriod, Min: 5, Max: 100, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "z_entry", Description: "Z-score distance for mean reversion entries", Default: s.zEntry, Min: 0.5, Max: 4.0, Step: 0.5, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *HurstRegime) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("period", &s.period).
		Int("min_window", &s.minWindow).
		Float("trend_level", &s.trendLevel).
		Float("revert_level", &s.revertLevel).
		Int("ema_period", &s.emaPeriod).
		Int("z_period", &s.zPeriod).
		Float("z_entry", &s.zEntry).
		Err()
	if err != nil {
		return err
	}
	if s.revertLevel > s.trendLevel {
		return invalidParameter("revert_level %.2f must not exceed trend_level %.2f", s.revertLevel, s.trendLevel)
	}
	if s.minWindow*4 > s.period {
		return invalidParameter("period %d is too short for min_window %d", s.period, s.minWindow)
	}
	return nil
}
