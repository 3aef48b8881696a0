package strategy

import "github.com/raykavin/stratbook/pkg/core"

// DataframeManager accumulates candles of one pair into a dataframe.
// A candle with the same open time as the newest row replaces that row.
type DataframeManager struct {
	df *core.Dataframe
}

// NewDataframeManager creates a new manager holding an empty dataframe of pair
func NewDataframeManager(pair string) *DataframeManager {
	return &DataframeManager{df: &core.Dataframe{
		Pair:     pair,
		Metadata: make(map[string]core.Series[float64]),
	}}
}

// Dataframe returns the whole dataframe
func (m *DataframeManager) Dataframe() *core.Dataframe {
	return m.df
}

// Sample returns the newest size rows.
func (m *DataframeManager) Sample(size int) core.Dataframe {
	return m.df.Sample(size)
}

// Len returns the number of rows
func (m *DataframeManager) Len() int {
	return len(m.df.Close)
}

// Update appends the candle, or overwrites the newest row when the open times match.
func (m *DataframeManager) Update(candle core.Candle) {
	df := m.df
	last := len(df.Time) - 1

	if last >= 0 && candle.Time.Equal(df.Time[last]) {
		df.Open[last] = candle.Open
		df.High[last] = candle.High
		df.Low[last] = candle.Low
		df.Close[last] = candle.Close
		df.Volume[last] = candle.Volume
		df.LastUpdate = candle.UpdatedAt
		for key, value := range candle.Metadata {
			if column := df.Metadata[key]; len(column) == len(df.Time) {
				column[last] = value
			}
		}
		return
	}

	df.Open = append(df.Open, candle.Open)
	df.High = append(df.High, candle.High)
	df.Low = append(df.Low, candle.Low)
	df.Close = append(df.Close, candle.Close)
	df.Volume = append(df.Volume, candle.Volume)
	df.Time = append(df.Time, candle.Time)
	df.LastUpdate = candle.Time
	for key, value := range candle.Metadata {
		df.Metadata[key] = append(df.Metadata[key], value)
	}
}

// Ready reports whether at least warmup rows are loaded.
func (m *DataframeManager) Ready(warmup int) bool {
	return len(m.df.Close) >= warmup
}

// IsLate reports whether the candle opened before the newest row.
func (m *DataframeManager) IsLate(candle core.Candle) bool {
	last := len(m.df.Time) - 1
	return last >= 0 && candle.Time.Before(m.df.Time[last])
}
