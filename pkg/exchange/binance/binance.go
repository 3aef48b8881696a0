// Package binance implements core.Exchange over the Binance spot API.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/jpillora/backoff"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/logger"
)

// MetadataFetcher adds a named value to every closed candle of a pair.
type MetadataFetcher func(pair string, t time.Time) (string, float64)

// Config is the flat form of the spot options, as read from configuration files.
type Config struct {
	APIKey     string
	APISecret  string
	TestNet    bool
	HeikinAshi bool

	MetadataFetchers []MetadataFetcher
}

// New builds a spot client from cfg.
func New(ctx context.Context, log logger.Logger, cfg Config) (*Spot, error) {
	var options []Option
	if cfg.APIKey != "" && cfg.APISecret != "" {
		options = append(options, WithBinanceCredentials(cfg.APIKey, cfg.APISecret))
	}
	if cfg.TestNet {
		options = append(options, WithTestNet())
	}
	if cfg.HeikinAshi {
		options = append(options, WithBinanceHeikinAshiCandle())
	}
	if len(cfg.MetadataFetchers) > 0 {
		options = append(options, WithMetadataFetchers(cfg.MetadataFetchers...))
	}
	return NewSpot(ctx, log, options...)
}

func formatQuantity(info core.AssetInfo, value float64) string {
	if info.StepSize > 0 {
		value = common.AmountToLotSize(info.StepSize, info.BaseAssetPrecision, value)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatPrice(info core.AssetInfo, value float64) string {
	if info.TickSize > 0 {
		value = common.AmountToLotSize(info.TickSize, info.QuotePrecision, value)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func validateQuantity(assetsInfo map[string]core.AssetInfo, pair string, quantity float64) error {
	info, ok := assetsInfo[pair]
	if !ok {
		return &exchange.OrderError{Err: core.ErrInvalidAsset, Pair: pair, Quantity: quantity}
	}

	if quantity > info.MaxQuantity || quantity < info.MinQuantity {
		return &exchange.OrderError{
			Err:      fmt.Errorf("%w: min: %f max: %f", core.ErrInvalidQuantity, info.MinQuantity, info.MaxQuantity),
			Pair:     pair,
			Quantity: quantity,
		}
	}
	return nil
}

func newBackoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}
}

func millis(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond)).UTC()
}
