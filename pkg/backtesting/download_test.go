package backtesting

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/exchange"
	zlog "github.com/raykavin/stratbook/pkg/logger/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Write(t *testing.T) {
	feed, err := exchange.NewCSVFeed("1m", exchange.PairFeed{
		Pair:      "BTCUSDT",
		File:      filepath.Join("..", "exchange", "testdata", "btc-1m.csv"),
		Timeframe: "1m",
	})
	require.NoError(t, err)

	zl, err := zlog.NewWithWriter(io.Discard, "info", "", false, true)
	require.NoError(t, err)

	downloader := NewDownloader(feed, zlog.NewAdapter(zl), WithProgressOutput(io.Discard))

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err = downloader.Write(context.Background(), &buf, "BTCUSDT", "1m",
		WithInterval(start, start.Add(29*time.Minute)))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 31)
	assert.Equal(t, "time,open,close,low,high,volume", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1609459200,100.00000000,100.50000000"))
}

func TestDownloader_InvalidRange(t *testing.T) {
	feed, err := exchange.NewCSVFeed("1m")
	require.NoError(t, err)

	zl, err := zlog.NewWithWriter(io.Discard, "info", "", false, true)
	require.NoError(t, err)
	downloader := NewDownloader(feed, zlog.NewAdapter(zl), WithProgressOutput(io.Discard))

	start := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)
	err = downloader.Write(context.Background(), io.Discard, "BTCUSDT", "1m",
		WithInterval(start, start.Add(-time.Hour)))
	assert.Error(t, err)

	err = downloader.Write(context.Background(), io.Discard, "BTCUSDT", "1x",
		WithInterval(start, start.Add(time.Hour)))
	assert.Error(t, err)
}
