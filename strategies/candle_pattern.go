package strategies

import (
	"context"
	"strings"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/indicator"
	"github.com/raykavin/stratbook/pkg/pattern"
)

// CandlePattern buys when one of its bullish formations completes and sells
// on one of its bearish formations. An optional trend EMA only lets entries
// through below it, where reversal patterns matter.
type CandlePattern struct {
	base
	bullish     string
	bearish     string
	trendPeriod int
	trendFilter bool

	buyPatterns  []pattern.Pattern
	sellPatterns []pattern.Pattern
}

// NewCandlePattern creates a new instance of CandlePattern with default parameters
func NewCandlePattern() *CandlePattern {
	s := &CandlePattern{base: newBase("1h"), bullish: "all", bearish: "all", trendPeriod: 50}
	s.buyPatterns, _ = patternsOf(s.bullish, pattern.Bullish)
	s.sellPatterns, _ = patternsOf(s.bearish, pattern.Bearish)
	return s
}

// newPatternPreset builds a CandlePattern restricted to one pair of formations.
func newPatternPreset(bullish, bearish string) func() *CandlePattern {
	return func() *CandlePattern {
		s := NewCandlePattern()
		s.bullish, s.bearish = bullish, bearish
		s.buyPatterns, _ = patternsOf(bullish, pattern.Bullish)
		s.sellPatterns, _ = patternsOf(bearish, pattern.Bearish)
		return s
	}
}

// patternsOf resolves a comma separated list of pattern names. "all" selects
// every pattern with the given bias.
func patternsOf(names string, bias pattern.Bias) ([]pattern.Pattern, error) {
	var out []pattern.Pattern
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		switch name {
		case "":
			continue
		case "all":
			for _, p := range pattern.All() {
				if p.Bias == bias {
					out = append(out, p)
				}
			}
			continue
		}

		p, ok := pattern.ByName(name)
		if !ok {
			return nil, invalidParameter("unknown candle pattern %q", name)
		}
		if p.Bias != bias {
			return nil, invalidParameter("pattern %s is %s, expected %s", p.Name, p.Bias, bias)
		}
		out = append(out, p)
	}
	return out, nil
}

// WarmupPeriod returns the number of candles needed before the strategy is ready
func (s *CandlePattern) WarmupPeriod() int {
	return s.trendPeriod + 3
}

// Indicators calculates and returns the indicators used by this strategy
func (s *CandlePattern) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["trend"] = indicator.EMA(df.Close, s.trendPeriod)

	return []core.ChartIndicator{
		overlay(df, "Trend", line("EMA", "orange", df.Metadata["trend"])),
	}
}

func anyMatch(patterns []pattern.Pattern, df *core.Dataframe) bool {
	for _, p := range patterns {
		if p.Match(df) {
			return true
		}
	}
	return false
}

// OnCandle is called for each new candle and implements the trading logic
func (s *CandlePattern) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	buy := anyMatch(s.buyPatterns, df)
	if buy && s.trendFilter {
		buy = df.Close.Last(0) < df.Metadata["trend"].Last(0)
	}
	s.trade(ctx, df, broker, buy, anyMatch(s.sellPatterns, df))
}

// GetParameters returns the tunable parameters of CandlePattern
func (s *CandlePattern) GetParameters() []core.Parameter {
	return s.parameters(
		core.Parameter{Name: "bullish", Description: "Comma separated entry patterns, or all", Default: s.bullish, Type: core.TypeString},
		core.Parameter{Name: "bearish", Description: "Comma separated exit patterns, or all", Default: s.bearish, Type: core.TypeString},
		core.Parameter{Name: "trend_filter", Description: "Only buy below the trend EMA", Default: s.trendFilter, Type: core.TypeBool},
		core.Parameter{Name: "trend_period", Description: "Trend EMA period", Default: s.trendPeriod, Min: 10, Max: 200, Step: 10, Type: core.TypeInt},
	)
}

// SetParameterValues applies params, rejecting inconsistent combinations
func (s *CandlePattern) SetParameterValues(params core.ParameterSet) error {
	err := s.read(params).
		String("bullish", &s.bullish).
		String("bearish", &s.bearish).
		Bool("trend_filter", &s.trendFilter).
		Int("trend_period", &s.trendPeriod).
		Err()
	if err != nil {
		return err
	}

	if s.buyPatterns, err = patternsOf(s.bullish, pattern.Bullish); err != nil {
		return err
	}
	if s.sellPatterns, err = patternsOf(s.bearish, pattern.Bearish); err != nil {
		return err
	}
	return nil
}
