package core

import "math"

// HeikinAshi keeps the previous smoothed candle needed to build the next one.
//
//	close = (open + high + low + close) / 4
//	open  = (prev open + prev close) / 2
//	high  = max(high, open, close)
//	low   = min(low, open, close)
type HeikinAshi struct {
	previous Candle
	started  bool
}

// NewHeikinAshi creates a new Heikin-Ashi converter with no previous candle
func NewHeikinAshi() *HeikinAshi {
	return &HeikinAshi{}
}

// Next returns the Heikin-Ashi version of c and stores it as the new reference.
func (ha *HeikinAshi) Next(c Candle) Candle {
	prevOpen, prevClose := ha.previous.Open, ha.previous.Close
	if !ha.started {
		prevOpen, prevClose = c.Open, c.Close
	}

	var out Candle
	out.Open = (prevOpen + prevClose) / 2
	out.Close = (c.Open + c.High + c.Low + c.Close) / 4
	out.High = math.Max(c.High, math.Max(out.Open, out.Close))
	out.Low = math.Min(c.Low, math.Min(out.Open, out.Close))

	ha.previous = out
	ha.started = true

	return out
}
