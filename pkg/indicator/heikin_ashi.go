package indicator

import "github.com/raykavin/stratbook/pkg/core"

// HeikinAshi converts OHLC columns into Heikin-Ashi columns.
func HeikinAshi(open, high, low, close []float64) (haOpen, haHigh, haLow, haClose []float64) {
	size := len(close)
	haOpen = make([]float64, size)
	haHigh = make([]float64, size)
	haLow = make([]float64, size)
	haClose = make([]float64, size)

	ha := core.NewHeikinAshi()
	for i := 0; i < size; i++ {
		c := ha.Next(core.Candle{Open: open[i], High: high[i], Low: low[i], Close: close[i]})
		haOpen[i], haHigh[i], haLow[i], haClose[i] = c.Open, c.High, c.Low, c.Close
	}
	return haOpen, haHigh, haLow, haClose
}
