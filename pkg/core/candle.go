package core

import (
	"strconv"
	"time"
)

// CandleSubscriber receives every candle published by a data feed.
type CandleSubscriber interface {
	OnCandle(Candle)
}

// Candle is a single OHLCV bar for a pair. Partial candles have Complete=false
// and are updated in place until the period closes.
type Candle struct {
	Pair      string
	Time      time.Time
	UpdatedAt time.Time
	Open      float64
	Close     float64
	Low       float64
	High      float64
	Volume    float64
	Complete  bool

	// Extra numeric columns found in CSV inputs or filled by metadata fetchers
	Metadata map[string]float64
}

// IsEmpty reports whether the candle carries no price data.
func (c Candle) IsEmpty() bool {
	return c.Pair == "" && c.Close == 0 && c.Open == 0 && c.Volume == 0
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports whether the candle closed below its open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// ToSlice renders the candle as a CSV row: time, open, close, low, high, volume.
func (c Candle) ToSlice(precision int) []string {
	return []string{
		strconv.FormatInt(c.Time.Unix(), 10),
		strconv.FormatFloat(c.Open, 'f', precision, 64),
		strconv.FormatFloat(c.Close, 'f', precision, 64),
		strconv.FormatFloat(c.Low, 'f', precision, 64),
		strconv.FormatFloat(c.High, 'f', precision, 64),
		strconv.FormatFloat(c.Volume, 'f', precision, 64),
	}
}

// Less orders candles by open time, then update time, then pair name.
func (c Candle) Less(j Item) bool {
	other := j.(Candle)

	if !c.Time.Equal(other.Time) {
		return c.Time.Before(other.Time)
	}

	if !c.UpdatedAt.Equal(other.UpdatedAt) {
		return c.UpdatedAt.Before(other.UpdatedAt)
	}

	return c.Pair < other.Pair
}

// ToHeikinAshi converts the candle using the running state kept in ha.
func (c Candle) ToHeikinAshi(ha *HeikinAshi) Candle {
	converted := ha.Next(c)

	return Candle{
		Pair:      c.Pair,
		Time:      c.Time,
		UpdatedAt: c.UpdatedAt,
		Open:      converted.Open,
		High:      converted.High,
		Low:       converted.Low,
		Close:     converted.Close,
		Volume:    c.Volume,
		Complete:  c.Complete,
		Metadata:  c.Metadata,
	}
}
