package core

import "time"

// Dataframe holds the OHLCV history of one pair plus indicator columns.
type Dataframe struct {
	Pair string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time       []time.Time
	LastUpdate time.Time

	// Indicator columns filled by strategies, keyed by name
	Metadata map[string]Series[float64]
}

// Sample returns a view holding only the newest positions rows.
func (df Dataframe) Sample(positions int) Dataframe {
	size := len(df.Time)
	start := size - positions
	if start <= 0 {
		return df
	}

	sample := Dataframe{
		Pair:       df.Pair,
		Close:      df.Close.LastValues(positions),
		Open:       df.Open.LastValues(positions),
		High:       df.High.LastValues(positions),
		Low:        df.Low.LastValues(positions),
		Volume:     df.Volume.LastValues(positions),
		Time:       df.Time[start:],
		LastUpdate: df.LastUpdate,
		Metadata:   make(map[string]Series[float64], len(df.Metadata)),
	}

	for key, values := range df.Metadata {
		sample.Metadata[key] = values.LastValues(positions)
	}

	return sample
}

// Candle rebuilds the candle found position steps back from the newest row.
func (df Dataframe) Candle(position int) Candle {
	idx := len(df.Close) - 1 - position
	return Candle{
		Pair:     df.Pair,
		Time:     df.Time[idx],
		Open:     df.Open[idx],
		High:     df.High[idx],
		Low:      df.Low[idx],
		Close:    df.Close[idx],
		Volume:   df.Volume[idx],
		Complete: true,
	}
}
