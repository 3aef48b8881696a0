package stratbook

import (
	"os"
	"strconv"

	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/raykavin/stratbook/pkg/logger/zerolog"
)

const (
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

const (
	envLogLevel      = "STRATBOOK_LOG_LEVEL"
	envLogTimeFormat = "STRATBOOK_LOG_TIME_FORMAT"
	envLogColor      = "STRATBOOK_LOG_COLOR"
	envLogJSON       = "STRATBOOK_LOG_JSON"
)

// DefaultLog is used by the bot and the strategy catalog unless WithLogger says otherwise.
var DefaultLog logger.Logger

func init() {
	log, err := newLogger()
	if err != nil {
		panic(err)
	}
	DefaultLog = log
}

func newLogger() (logger.Logger, error) {
	colored, err := strconv.ParseBool(envOr(envLogColor, defaultLogColored))
	if err != nil {
		return nil, err
	}

	jsonFormat, err := strconv.ParseBool(envOr(envLogJSON, defaultLogJSON))
	if err != nil {
		return nil, err
	}

	zl, err := zerolog.New(envOr(envLogLevel, defaultLogLevel), envOr(envLogTimeFormat, defaultLogTimeFormat), colored, jsonFormat)
	if err != nil {
		return nil, err
	}
	return zerolog.NewAdapter(zl), nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
