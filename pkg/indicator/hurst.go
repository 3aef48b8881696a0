package indicator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HurstExponent estimates the Hurst exponent of values with rescaled range analysis.
// The series is split into chunks of minWindow, 2*minWindow, ... up to half its length,
// and the exponent is the slope of log(R/S) against log(chunk size).
// It returns NaN when fewer than two chunk sizes fit.
//
// Values near 0.5 indicate a random walk, above it a trending series and below it a
// mean reverting one. Pass increments (returns), not prices.
func HurstExponent(values []float64, minWindow int) float64 {
	if minWindow < 2 {
		minWindow = 2
	}

	var logSize, logRS []float64
	for size := minWindow; size <= len(values)/2; size *= 2 {
		rs := averageRescaledRange(values, size)
		if rs <= 0 || math.IsNaN(rs) {
			continue
		}
		logSize = append(logSize, math.Log(float64(size)))
		logRS = append(logRS, math.Log(rs))
	}

	if len(logSize) < 2 {
		return math.NaN()
	}

	_, slope := stat.LinearRegression(logSize, logRS, nil, false)
	return slope
}

func averageRescaledRange(values []float64, size int) float64 {
	var total float64
	var chunks int

	deviation := make([]float64, size)
	for start := 0; start+size <= len(values); start += size {
		chunk := values[start : start+size]
		mean := stat.Mean(chunk, nil)

		var cumulative float64
		for i, v := range chunk {
			cumulative += v - mean
			deviation[i] = cumulative
		}

		r := floats.Max(deviation) - floats.Min(deviation)
		s := stat.PopStdDev(chunk, nil)
		if s == 0 {
			continue
		}

		total += r / s
		chunks++
	}

	if chunks == 0 {
		return math.NaN()
	}
	return total / float64(chunks)
}

// RollingHurst computes the Hurst exponent of log returns over a trailing window
// ending at each close. Positions without a full window hold NaN.
func RollingHurst(close []float64, period, minWindow int) []float64 {
	out := make([]float64, len(close))
	returns := make([]float64, len(close))
	for i := range close {
		out[i] = math.NaN()
		if i > 0 && close[i-1] > 0 && close[i] > 0 {
			returns[i] = math.Log(close[i] / close[i-1])
		}
	}

	for i := period; i < len(close); i++ {
		out[i] = HurstExponent(returns[i-period+1:i+1], minWindow)
	}
	return out
}
