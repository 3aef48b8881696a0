// Package backtesting prepares historical data for backtests.
package backtesting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/xhit/go-str2duration/v2"
)

const batchSize = 500

var csvHeader = []string{"time", "open", "close", "low", "high", "volume"}

// Downloader pulls candles from a feeder and writes them as CSV, in the layout
// exchange.CSVFeed reads.
type Downloader struct {
	feeder   core.Feeder
	log      logger.Logger
	progress io.Writer
	now      func() time.Time
}

type DownloaderOption func(*Downloader)

// WithProgressOutput sets where the progress bar is drawn, stderr by default.
func WithProgressOutput(w io.Writer) DownloaderOption {
	return func(d *Downloader) {
		d.progress = w
	}
}

// NewDownloader creates a new downloader reading candles from feeder
func NewDownloader(feeder core.Feeder, log logger.Logger, options ...DownloaderOption) *Downloader {
	d := &Downloader{
		feeder:   feeder,
		log:      log,
		progress: os.Stderr,
		now:      time.Now,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Range is the period to download.
type Range struct {
	Start time.Time
	End   time.Time
}

type Option func(*Range)

// WithInterval downloads from start to end.
func WithInterval(start, end time.Time) Option {
	return func(r *Range) {
		r.Start = start
		r.End = end
	}
}

// WithDays downloads the last days up to now.
func WithDays(days int) Option {
	return func(r *Range) {
		r.End = time.Now()
		r.Start = r.End.AddDate(0, 0, -days)
	}
}

// Download writes the candles of pair at timeframe to outputPath. Without
// options the last month is downloaded.
func (d *Downloader) Download(ctx context.Context, pair, timeframe, outputPath string, options ...Option) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return d.Write(ctx, file, pair, timeframe, options...)
}

// Write is Download to an arbitrary writer.
func (d *Downloader) Write(ctx context.Context, w io.Writer, pair, timeframe string, options ...Option) error {
	now := d.now()
	period := &Range{Start: now.AddDate(0, -1, 0), End: now}
	for _, option := range options {
		option(period)
	}
	d.normalize(period)

	if !period.Start.Before(period.End) {
		return fmt.Errorf("invalid download range %s - %s", period.Start, period.End)
	}

	interval, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return fmt.Errorf("timeframe %s: %w", timeframe, err)
	}
	total := int(period.End.Sub(period.Start)/interval) + 1

	d.log.Infof("downloading %d candles of %s for %s", total, timeframe, pair)

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(d.progress),
		progressbar.OptionSetDescription(pair),
		progressbar.OptionShowCount(),
	)

	precision := d.feeder.AssetsInfo(pair).QuotePrecision
	missing := 0
	for start := period.Start; start.Before(period.End); start = start.Add(interval * batchSize) {
		end := start.Add(interval * batchSize)
		last := !end.Before(period.End)
		if last {
			end = period.End
		} else {
			end = end.Add(-time.Second)
		}

		candles, err := d.feeder.CandlesByPeriod(ctx, pair, timeframe, start, end)
		if err != nil {
			return err
		}

		for _, candle := range candles {
			if err := writer.Write(candle.ToSlice(precision)); err != nil {
				return err
			}
		}

		if !last && len(candles) < batchSize {
			missing += batchSize - len(candles)
		}
		_ = bar.Add(len(candles))
	}
	_ = bar.Finish()

	if missing > 0 {
		d.log.Warnf("%d missing candles", missing)
	}

	writer.Flush()
	return writer.Error()
}

// normalize starts the range at midnight UTC and clamps its end to now.
func (d *Downloader) normalize(r *Range) {
	r.Start = time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)

	if now := d.now(); r.End.After(now) {
		r.End = now
	}
}
