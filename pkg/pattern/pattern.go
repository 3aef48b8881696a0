// Package pattern detects classic candlestick formations on the newest rows of a dataframe.
package pattern

import (
	"math"
	"strings"

	"github.com/raykavin/stratbook/pkg/core"
)

type Bias int

const (
	Neutral Bias = iota
	Bullish
	Bearish
)

// String returns the lower case name of the bias
func (b Bias) String() string {
	switch b {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	}
	return "neutral"
}

// Pattern is a named formation spanning Candles rows ending at the newest one.
type Pattern struct {
	Name    string
	Bias    Bias
	Candles int
	match   func(c []core.Candle) bool
}

// Match reports whether the formation ends on the newest candle of df.
func (p Pattern) Match(df *core.Dataframe) bool {
	if df == nil || len(df.Close) < p.Candles {
		return false
	}

	// c[0] is the newest candle
	c := make([]core.Candle, p.Candles)
	for i := range c {
		c[i] = df.Candle(i)
	}
	return p.match(c)
}

func body(c core.Candle) float64        { return math.Abs(c.Close - c.Open) }
func span(c core.Candle) float64        { return c.High - c.Low }
func bodyTop(c core.Candle) float64     { return math.Max(c.Open, c.Close) }
func bodyBottom(c core.Candle) float64  { return math.Min(c.Open, c.Close) }
func upperShadow(c core.Candle) float64 { return c.High - bodyTop(c) }
func lowerShadow(c core.Candle) float64 { return bodyBottom(c) - c.Low }
func midBody(c core.Candle) float64     { return (c.Open + c.Close) / 2 }

var (
	Doji = Pattern{Name: "doji", Bias: Neutral, Candles: 1, match: func(c []core.Candle) bool {
		return span(c[0]) > 0 && body(c[0]) <= 0.1*span(c[0])
	}}

	Hammer = Pattern{Name: "hammer", Bias: Bullish, Candles: 3, match: func(c []core.Candle) bool {
		b := body(c[0])
		return b > 0 &&
			lowerShadow(c[0]) >= 2*b &&
			upperShadow(c[0]) <= 0.5*b &&
			c[1].Close < c[2].Close
	}}

	ShootingStar = Pattern{Name: "shooting_star", Bias: Bearish, Candles: 3, match: func(c []core.Candle) bool {
		b := body(c[0])
		return b > 0 &&
			upperShadow(c[0]) >= 2*b &&
			lowerShadow(c[0]) <= 0.5*b &&
			c[1].Close > c[2].Close
	}}

	BullishEngulfing = Pattern{Name: "bullish_engulfing", Bias: Bullish, Candles: 2, match: func(c []core.Candle) bool {
		return c[1].Bearish() && c[0].Bullish() &&
			c[0].Open <= c[1].Close && c[0].Close >= c[1].Open &&
			body(c[0]) > body(c[1])
	}}

	BearishEngulfing = Pattern{Name: "bearish_engulfing", Bias: Bearish, Candles: 2, match: func(c []core.Candle) bool {
		return c[1].Bullish() && c[0].Bearish() &&
			c[0].Open >= c[1].Close && c[0].Close <= c[1].Open &&
			body(c[0]) > body(c[1])
	}}

	BullishHarami = Pattern{Name: "bullish_harami", Bias: Bullish, Candles: 2, match: func(c []core.Candle) bool {
		return c[1].Bearish() && c[0].Bullish() &&
			c[0].Open > c[1].Close && c[0].Close < c[1].Open
	}}

	BearishHarami = Pattern{Name: "bearish_harami", Bias: Bearish, Candles: 2, match: func(c []core.Candle) bool {
		return c[1].Bullish() && c[0].Bearish() &&
			c[0].Open < c[1].Close && c[0].Close > c[1].Open
	}}

	MorningStar = Pattern{Name: "morning_star", Bias: Bullish, Candles: 3, match: func(c []core.Candle) bool {
		return c[2].Bearish() && body(c[2]) >= 0.5*span(c[2]) &&
			body(c[1]) <= 0.3*body(c[2]) &&
			bodyTop(c[1]) < c[2].Close &&
			c[0].Bullish() && c[0].Close > midBody(c[2])
	}}

	EveningStar = Pattern{Name: "evening_star", Bias: Bearish, Candles: 3, match: func(c []core.Candle) bool {
		return c[2].Bullish() && body(c[2]) >= 0.5*span(c[2]) &&
			body(c[1]) <= 0.3*body(c[2]) &&
			bodyBottom(c[1]) > c[2].Close &&
			c[0].Bearish() && c[0].Close < midBody(c[2])
	}}

	ThreeWhiteSoldiers = Pattern{Name: "three_white_soldiers", Bias: Bullish, Candles: 3, match: func(c []core.Candle) bool {
		for i := 0; i < 3; i++ {
			if !c[i].Bullish() || upperShadow(c[i]) > body(c[i]) {
				return false
			}
		}
		for i := 0; i < 2; i++ {
			if c[i].Close <= c[i+1].Close || c[i].Open <= c[i+1].Open || c[i].Open > c[i+1].Close {
				return false
			}
		}
		return true
	}}

	ThreeBlackCrows = Pattern{Name: "three_black_crows", Bias: Bearish, Candles: 3, match: func(c []core.Candle) bool {
		for i := 0; i < 3; i++ {
			if !c[i].Bearish() || lowerShadow(c[i]) > body(c[i]) {
				return false
			}
		}
		for i := 0; i < 2; i++ {
			if c[i].Close >= c[i+1].Close || c[i].Open >= c[i+1].Open || c[i].Open < c[i+1].Close {
				return false
			}
		}
		return true
	}}

	PiercingLine = Pattern{Name: "piercing_line", Bias: Bullish, Candles: 2, match: func(c []core.Candle) bool {
		return c[1].Bearish() && c[0].Bullish() &&
			c[0].Open < c[1].Close &&
			c[0].Close > midBody(c[1]) && c[0].Close < c[1].Open
	}}

	DarkCloudCover = Pattern{Name: "dark_cloud_cover", Bias: Bearish, Candles: 2, match: func(c []core.Candle) bool {
		return c[1].Bullish() && c[0].Bearish() &&
			c[0].Open > c[1].Close &&
			c[0].Close < midBody(c[1]) && c[0].Close > c[1].Open
	}}
)

// All returns every known pattern.
func All() []Pattern {
	return []Pattern{
		Doji, Hammer, ShootingStar,
		BullishEngulfing, BearishEngulfing,
		BullishHarami, BearishHarami,
		MorningStar, EveningStar,
		ThreeWhiteSoldiers, ThreeBlackCrows,
		PiercingLine, DarkCloudCover,
	}
}

// ByName finds a pattern by its name, ignoring case.
func ByName(name string) (Pattern, bool) {
	for _, p := range All() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Detect returns the patterns completed by the newest candle.
func Detect(df *core.Dataframe) []Pattern {
	var found []Pattern
	for _, p := range All() {
		if p.Match(df) {
			found = append(found, p)
		}
	}
	return found
}
