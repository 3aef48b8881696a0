package strategies

import (
	"context"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// VolumeBreakout buys a bullish candle closing at a new high on volume above
// a multiple of its average, and sells when the close loses the trend EMA.
type VolumeBreakout struct {
	base
	period     int
	multiplier float64
	trend      int
}

// NewVolumeBreakout creates a new instance of VolumeBreakout with default parameters
func NewVolumeBreakout() *VolumeBreakout {
	return &VolumeBreakout{base: newBase("1h"), period: 20, multiplier: 2, trend: 20}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *VolumeBreakout) WarmupPeriod() int {
	return max(s.period, s.trend) * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *VolumeBreakout) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["volume_avg"] = indicator.SMA(df.Volume, s.period)
	df.Metadata["highest"] = indicator.Max(df.High, s.period)
	df.Metadata["trend"] = indicator.EMA(df.Close, s.trend)
	df.Metadata["obv"] = indicator.OBV(df.Close, df.Volume)

	return []core.ChartIndicator{
		overlay(df, "Trend", line("EMA", "orange", df.Metadata["trend"])),
		pane(df, "Volume",
			core.IndicatorMetric{Name: "Volume", Color: "gray", Style: core.StyleBar, Values: df.Volume},
			line("Average", "blue", df.Metadata["volume_avg"]),
		),
		pane(df, "OBV", line("OBV", "green", df.Metadata["obv"])),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *VolumeBreakout) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	candle := df.Candle(0)
	surge := candle.Volume > df.Metadata["volume_avg"].Last(1)*s.multiplier
	breakout := candle.Bullish() && candle.Close >= df.Metadata["highest"].Last(1)

	s.trade(ctx, df, broker, surge && breakout, df.Close.Crossunder(df.Metadata["trend"]))
}

// GetParameters returns the tunable parameters of VolumeBreakout
func (s *VolumeBreakout) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "period", Description: "Volume average and high lookback", Default: s.period, Min: 5, Max: 50, Step: 5, Type: core.TypeInt},
		core.Parameter{Name: "multiplier", Description: "Volume surge multiple", Default: s.multiplier, Min: 1.0, Max: 5.0, Step: 0.5, Type: core.TypeFloat},
		core.Parameter{Name: "trend", Description: "Exit EMA period", Default: s.trend, Min: 5, Max: 100, Step: 5, Type: core.TypeInt},
	)
}

// SetParameterValues applies params to the strategy
func (s *VolumeBreakout) SetParameterValues(params core.ParameterSet) error {
	return s.read(params).
		Int("period", &s.period).
		Float("multiplier", &s.multiplier).
		Int("trend", &s.trend).
		Err()
}
