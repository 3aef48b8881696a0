package strategies

import (
	"context"
	"math"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
)

// MACDCross trades the MACD line crossing its signal line. With the histogram
// filter on, crosses whose histogram is smaller than histogram_min of the
// price are ignored.
type MACDCross struct {
	base
	fast            int
	slow            int
	signal          int
	histogramFilter bool
	histogramMin    float64
}

// NewMACDCross creates a new instance of MACDCross with default parameters
func NewMACDCross() *MACDCross {
	return &MACDCross{base: newBase("1h"), fast: 12, slow: 26, signal: 9, histogramMin: 0.0005}
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *MACDCross) WarmupPeriod() int {
	return (s.slow + s.signal) * 2
}

// Indicators calculates and returns the indicators used by this strategy
func (s *MACDCross) Indicators(df *core.Dataframe) []core.ChartIndicator {
	macd, signal, hist := indicator.MACD(df.Close, s.fast, s.slow, s.signal)
	df.Metadata["macd"] = macd
	df.Metadata["signal"] = signal
	df.Metadata["histogram"] = hist

	return []core.ChartIndicator{
		pane(df, "MACD",
			line("MACD", "blue", df.Metadata["macd"]),
			line("Signal", "red", df.Metadata["signal"]),
			core.IndicatorMetric{Name: "Histogram", Color: "gray", Style: core.StyleHistogram, Values: df.Metadata["histogram"]},
		),
	}
}

// OnCandle is called for each new candle and implements the trading logic
func (s *MACDCross) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	macd, signal := df.Metadata["macd"], df.Metadata["signal"]

	buy, sell := macd.Crossover(signal), macd.Crossunder(signal)
	if s.histogramFilter && math.Abs(df.Metadata["histogram"].Last(0)) < s.histogramMin*df.Close.Last(0) {
		buy, sell = false, false
	}
	s.trade(ctx, df, broker, buy, sell)
}

// GetParameters returns the tunable parameters of MACDCross
func (s *MACDCross) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "fast", Description: "Fast EMA period", Default: s.fast, Min: 5, Max: 30, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "slow", Description: "Slow EMA period", Default: s.slow, Min: 10, Max: 60, Step: 2, Type: core.TypeInt},
		core.Parameter{Name: "signal", Description: "Signal line period", Default: s.signal, Min: 3, Max: 20, Step: 1, Type: core.TypeInt},
		core.Parameter{Name: "histogram_filter", Description: "Ignore crosses with a small histogram", Default: s.histogramFilter, Type: core.TypeBool},
		core.Parameter{Name: "histogram_min", Description: "Minimum histogram as a fraction of price", Default: s.histogramMin, Min: 0.0, Max: 0.01, Step: 0.0005, Type: core.TypeFloat},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *MACDCross) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		Int("fast", &s.fast).
		Int("slow", &s.slow).
		Int("signal", &s.signal).
		Bool("histogram_filter", &s.histogramFilter).
		Float("histogram_min", &s.histogramMin).
		Err()
	if err != nil {
		return err
	}
	if s.fast >= s.slow {
		return invalidParameter("fast %d must be below slow %d", s.fast, s.slow)
	}
	return nil
}
