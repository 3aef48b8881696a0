// Package metric holds statistics over backtest results.
package metric

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// BootstrapInterval is a confidence interval estimated by resampling.
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Bootstrap resamples values with replacement samples times, applies measure to
// every resample and returns the two-sided interval at the confidence level
// (0.95 for 95%).
func Bootstrap(values []float64, measure func([]float64) float64, samples int, confidence float64) BootstrapInterval {
	if len(values) == 0 || samples <= 0 {
		return BootstrapInterval{}
	}

	data := lo.Times(samples, func(_ int) float64 {
		return measure(resample(values))
	})
	sort.Float64s(data)

	tail := (1 - confidence) / 2
	mean, std := stat.MeanStdDev(data, nil)
	if samples == 1 {
		std = 0
	}

	return BootstrapInterval{
		Lower:  stat.Quantile(tail, stat.LinInterp, data, nil),
		Upper:  stat.Quantile(1-tail, stat.LinInterp, data, nil),
		StdDev: std,
		Mean:   mean,
	}
}

func resample(values []float64) []float64 {
	return lo.Times(len(values), func(_ int) float64 {
		return lo.Sample(values)
	})
}

// Mean is a convenience measure for Bootstrap.
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// Payoff is the average gain over the average loss of a list of returns.
func Payoff(values []float64) float64 {
	var wins, losses []float64
	for _, v := range values {
		if v >= 0 {
			wins = append(wins, v)
		} else {
			losses = append(losses, v)
		}
	}
	if len(wins) == 0 || len(losses) == 0 {
		return 0
	}
	return stat.Mean(wins, nil) / -stat.Mean(losses, nil)
}

// ProfitFactor is the gross gain over the gross loss of a list of returns.
func ProfitFactor(values []float64) float64 {
	var gain, loss float64
	for _, v := range values {
		if v >= 0 {
			gain += v
		} else {
			loss -= v
		}
	}
	if loss == 0 {
		return 0
	}
	return gain / loss
}
