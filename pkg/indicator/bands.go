package indicator

// Donchian returns the rolling highest high, the midpoint and the rolling lowest low.
func Donchian(high, low []float64, period int) (upper, middle, lower []float64) {
	upper = Max(high, period)
	lower = Min(low, period)
	middle = make([]float64, len(upper))
	for i := range upper {
		middle[i] = (upper[i] + lower[i]) / 2
	}
	return upper, middle, lower
}

// Keltner returns an EMA centre line with bands mult ATRs away.
func Keltner(high, low, close []float64, period int, mult float64) (upper, middle, lower []float64) {
	middle = EMA(close, period)
	atr := ATR(high, low, close, period)

	upper = make([]float64, len(middle))
	lower = make([]float64, len(middle))
	for i := range middle {
		upper[i] = middle[i] + mult*atr[i]
		lower[i] = middle[i] - mult*atr[i]
	}
	return upper, middle, lower
}

// QStick is the moving average of close minus open.
func QStick(open, close []float64, period int) []float64 {
	body := make([]float64, len(close))
	for i := range close {
		body[i] = close[i] - open[i]
	}
	return SMA(body, period)
}

// ZScore measures how many standard deviations each value sits from its rolling mean.
func ZScore(input []float64, period int) []float64 {
	mean := SMA(input, period)
	dev := StdDev(input, period, 1)

	out := make([]float64, len(input))
	for i := range input {
		if dev[i] != 0 {
			out[i] = (input[i] - mean[i]) / dev[i]
		}
	}
	return out
}
