package indicator

// SuperTrend returns the SuperTrend line and its direction (+1 up, -1 down).
// Values before the ATR lookback are zero.
func SuperTrend(high, low, close []float64, atrPeriod int, factor float64) (line, direction []float64) {
	size := len(close)
	line = make([]float64, size)
	direction = make([]float64, size)
	if size <= atrPeriod {
		return line, direction
	}

	atr := ATR(high, low, close, atrPeriod)
	upper := make([]float64, size)
	lower := make([]float64, size)

	start := atrPeriod
	mid := (high[start] + low[start]) / 2
	upper[start] = mid + factor*atr[start]
	lower[start] = mid - factor*atr[start]
	line[start], direction[start] = lower[start], 1

	for i := start + 1; i < size; i++ {
		mid = (high[i] + low[i]) / 2
		basicUpper := mid + factor*atr[i]
		basicLower := mid - factor*atr[i]

		upper[i] = basicUpper
		if basicUpper > upper[i-1] && close[i-1] <= upper[i-1] {
			upper[i] = upper[i-1]
		}

		lower[i] = basicLower
		if basicLower < lower[i-1] && close[i-1] >= lower[i-1] {
			lower[i] = lower[i-1]
		}

		switch {
		case direction[i-1] < 0 && close[i] > upper[i]:
			direction[i] = 1
		case direction[i-1] > 0 && close[i] < lower[i]:
			direction[i] = -1
		default:
			direction[i] = direction[i-1]
		}

		if direction[i] > 0 {
			line[i] = lower[i]
		} else {
			line[i] = upper[i]
		}
	}

	return line, direction
}
