package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrNoQuote          = errors.New("no quote available")

	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
)

// PairFeed points a pair at a CSV file recorded at Timeframe.
type PairFeed struct {
	Pair       string
	File       string
	Timeframe  string
	HeikinAshi bool
}

// CSVFeed serves candles loaded from CSV files. Rows are
// time,open,close,low,high,volume with an optional header; extra header
// columns end up in the candle metadata.
type CSVFeed struct {
	Feeds               map[string]PairFeed
	CandlePairTimeFrame map[string][]core.Candle
}

// NewCSVFeed loads every feed and resamples it to targetTimeframe.
func NewCSVFeed(targetTimeframe string, feeds ...PairFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		Feeds:               make(map[string]PairFeed),
		CandlePairTimeFrame: make(map[string][]core.Candle),
	}

	for _, feed := range feeds {
		csvFeed.Feeds[feed.Pair] = feed

		candles, err := readCandles(feed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", feed.File, err)
		}

		csvFeed.CandlePairTimeFrame[feedKey(feed.Pair, feed.Timeframe)] = candles
		if err := csvFeed.resample(feed.Pair, feed.Timeframe, targetTimeframe); err != nil {
			return nil, err
		}
	}

	return csvFeed, nil
}

// AssetsInfo returns permissive limits, since CSV data carries no exchange rules
func (c CSVFeed) AssetsInfo(pair string) core.AssetInfo {
	asset, quote := SplitAssetQuote(pair)
	return core.AssetInfo{
		BaseAsset:          asset,
		QuoteAsset:         quote,
		MaxPrice:           math.MaxFloat64,
		MaxQuantity:        math.MaxFloat64,
		StepSize:           0.00000001,
		TickSize:           0.00000001,
		QuotePrecision:     8,
		BaseAssetPrecision: 8,
	}
}

// LastQuote is the close of the newest candle loaded for pair.
func (c CSVFeed) LastQuote(_ context.Context, pair string) (float64, error) {
	feed, ok := c.Feeds[pair]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoQuote, pair)
	}

	candles := c.CandlePairTimeFrame[feedKey(pair, feed.Timeframe)]
	if len(candles) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoQuote, pair)
	}
	return candles[len(candles)-1].Close, nil
}

// parseHeaders maps column names to their index. A file starting with a number has no header row
func parseHeaders(headers []string) (headerMap map[string]int, additional []string, custom bool) {
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, nil, false
	}

	headerMap = make(map[string]int, len(headers))
	for index, header := range headers {
		headerMap[header] = index
		if _, ok := defaultHeaderMap[header]; !ok {
			additional = append(additional, header)
		}
	}
	return headerMap, additional, true
}

// readCandles loads every candle of a CSV file
func readCandles(feed PairFeed) ([]core.Candle, error) {
	file, err := os.Open(feed.File)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrInsufficientData
	}

	headerMap, additional, custom := parseHeaders(lines[0])
	if custom {
		lines = lines[1:]
	}

	ha := core.NewHeikinAshi()
	candles := make([]core.Candle, 0, len(lines))
	for i, line := range lines {
		candle, err := parseCandle(line, headerMap, additional, feed.Pair)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if feed.HeikinAshi {
			candle = candle.ToHeikinAshi(ha)
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

func parseCandle(line []string, headerMap map[string]int, additional []string, pair string) (core.Candle, error) {
	timestamp, err := strconv.ParseInt(line[headerMap["time"]], 10, 64)
	if err != nil {
		return core.Candle{}, err
	}

	candle := core.Candle{
		Pair:      pair,
		Time:      time.Unix(timestamp, 0).UTC(),
		UpdatedAt: time.Unix(timestamp, 0).UTC(),
		Complete:  true,
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"open", &candle.Open},
		{"close", &candle.Close},
		{"low", &candle.Low},
		{"high", &candle.High},
		{"volume", &candle.Volume},
	}
	for _, field := range fields {
		if *field.value, err = strconv.ParseFloat(line[headerMap[field.name]], 64); err != nil {
			return core.Candle{}, fmt.Errorf("%s: %w", field.name, err)
		}
	}

	if len(additional) > 0 {
		candle.Metadata = make(map[string]float64, len(additional))
		for _, header := range additional {
			value, err := strconv.ParseFloat(line[headerMap[header]], 64)
			if err != nil {
				return core.Candle{}, fmt.Errorf("%s: %w", header, err)
			}
			candle.Metadata[header] = value
		}
	}

	return candle, nil
}

// Limit keeps only the candles newer than duration before the last candle of each feed.
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for key, candles := range c.CandlePairTimeFrame {
		if len(candles) == 0 {
			continue
		}

		start := candles[len(candles)-1].Time.Add(-duration)
		c.CandlePairTimeFrame[key] = lo.Filter(candles, func(candle core.Candle, _ int) bool {
			return candle.Time.After(start)
		})
	}
	return c
}

// isFirstCandlePeriod reports whether t opens a targetTimeframe period
func isFirstCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}
	return isLastCandlePeriod(t.Add(-fromDuration).UTC(), fromTimeframe, targetTimeframe)
}

// isLastCandlePeriod reports whether the candle opened at t closes a targetTimeframe period
func isLastCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	if fromTimeframe == targetTimeframe {
		return true, nil
	}

	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}
	return onPeriodBoundary(t.Add(fromDuration).UTC(), targetTimeframe)
}

func onPeriodBoundary(t time.Time, timeframe string) (bool, error) {
	onHour := t.Minute() == 0 && t.Second() == 0
	switch timeframe {
	case "1m":
		return t.Second() == 0, nil
	case "3m", "5m", "10m", "15m", "30m":
		minutes, _ := strconv.Atoi(timeframe[:len(timeframe)-1])
		return t.Minute()%minutes == 0 && t.Second() == 0, nil
	case "1h":
		return onHour, nil
	case "2h", "4h", "6h", "8h", "12h":
		hours, _ := strconv.Atoi(timeframe[:len(timeframe)-1])
		return t.Hour()%hours == 0 && onHour, nil
	case "1d":
		return t.Hour() == 0 && onHour, nil
	case "1w":
		return t.Weekday() == time.Sunday && t.Hour() == 0 && onHour, nil
	default:
		return false, fmt.Errorf("invalid timeframe: %s", timeframe)
	}
}

// resample merges the candles of pair into targetTimeframe candles
func (c *CSVFeed) resample(pair, sourceTimeframe, targetTimeframe string) error {
	source := c.CandlePairTimeFrame[feedKey(pair, sourceTimeframe)]
	if len(source) == 0 || sourceTimeframe == targetTimeframe {
		return nil
	}

	start := 0
	for i := range source {
		first, err := isFirstCandlePeriod(source[i].Time, sourceTimeframe, targetTimeframe)
		if err != nil {
			return err
		}
		if first {
			start = i
			break
		}
	}

	var (
		resampled []core.Candle
		current   core.Candle
		open      bool
	)
	for _, candle := range source[start:] {
		last, err := isLastCandlePeriod(candle.Time, sourceTimeframe, targetTimeframe)
		if err != nil {
			return err
		}

		if !open {
			current = candle
			open = true
		} else {
			current.High = math.Max(current.High, candle.High)
			current.Low = math.Min(current.Low, candle.Low)
			current.Close = candle.Close
			current.Volume += candle.Volume
			current.UpdatedAt = candle.UpdatedAt
			current.Metadata = candle.Metadata
		}

		if last {
			current.Complete = true
			resampled = append(resampled, current)
			open = false
		}
	}

	c.CandlePairTimeFrame[feedKey(pair, targetTimeframe)] = resampled
	return nil
}

// CandlesByPeriod returns the candles opened between start and end, inclusive.
func (c CSVFeed) CandlesByPeriod(_ context.Context, pair, timeframe string, start, end time.Time) ([]core.Candle, error) {
	return lo.Filter(c.CandlePairTimeFrame[feedKey(pair, timeframe)], func(candle core.Candle, _ int) bool {
		return !candle.Time.Before(start) && !candle.Time.After(end)
	}), nil
}

// CandlesByLimit pops the oldest limit candles, so a following subscription
// only streams what was not preloaded.
func (c *CSVFeed) CandlesByLimit(_ context.Context, pair, timeframe string, limit int) ([]core.Candle, error) {
	key := feedKey(pair, timeframe)
	if len(c.CandlePairTimeFrame[key]) < limit {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, pair)
	}

	result := c.CandlePairTimeFrame[key][:limit]
	c.CandlePairTimeFrame[key] = c.CandlePairTimeFrame[key][limit:]
	return result, nil
}

// CandlesSubscription streams every loaded candle and closes both channels.
func (c CSVFeed) CandlesSubscription(ctx context.Context, pair, timeframe string) (chan core.Candle, chan error) {
	ccandle := make(chan core.Candle)
	cerr := make(chan error)
	candles := c.CandlePairTimeFrame[feedKey(pair, timeframe)]

	go func() {
		defer close(cerr)
		defer close(ccandle)

		for _, candle := range candles {
			select {
			case ccandle <- candle:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ccandle, cerr
}
