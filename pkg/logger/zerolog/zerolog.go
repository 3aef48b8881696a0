// Package zerolog builds the console and JSON loggers backed by rs/zerolog.
package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	messageWidth = 80
	fileWidth    = 18
	lineWidth    = 4
)

// New creates a zerolog logger writing to stdout. With jsonFormat the raw
// JSON lines are written; otherwise a padded, optionally coloured console layout is used.
func New(level, timeLayout string, colored, jsonFormat bool) (*zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, level, timeLayout, colored, jsonFormat)
}

// NewWithWriter is New with a custom destination.
func NewWithWriter(out io.Writer, level, timeLayout string, colored, jsonFormat bool) (*zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)

	var writer io.Writer = out
	if !jsonFormat {
		writer = zerolog.ConsoleWriter{
			Out:           out,
			NoColor:       !colored,
			TimeFormat:    timeLayout,
			FormatLevel:   levelLabel,
			FormatMessage: paddedMessage,
			FormatCaller:  shortCaller,
			FormatTimestamp: func(i any) string {
				return localTimestamp(i, timeLayout)
			},
		}
	}

	zl := zerolog.New(writer).With().Timestamp().CallerWithSkipFrameCount(3).Logger()
	return &zl, nil
}

func levelLabel(i any) string {
	switch i {
	case zerolog.LevelTraceValue:
		return term.Cyanf("[TRC]")
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	case zerolog.LevelFatalValue:
		return term.Redf("[FTL]")
	case zerolog.LevelPanicValue:
		return term.Redf("[PAN]")
	}
	return term.Whitef("[UNK]")
}

func paddedMessage(i any) string {
	msg, ok := i.(string)
	if !ok || msg == "" {
		return ">"
	}
	if len(msg) > messageWidth {
		msg = msg[:messageWidth]
	}
	return term.Whitef("> %-*s", messageWidth, msg)
}

func shortCaller(i any) string {
	name, ok := i.(string)
	if !ok || name == "" {
		return ""
	}

	file, line, found := strings.Cut(filepath.Base(name), ":")
	if !found {
		return filepath.Base(name)
	}

	if len(file) > fileWidth {
		file = file[:fileWidth]
	}
	if len(line) > lineWidth {
		line = line[len(line)-lineWidth:]
	}

	return term.Yellowf("[%-*s:%*s]", fileWidth, file, lineWidth, line)
}

func localTimestamp(i any, layout string) string {
	raw, ok := i.(string)
	if !ok {
		return term.Cyanf("[%v]", i)
	}

	if ts, err := time.ParseInLocation(time.RFC3339, raw, time.Local); err == nil {
		raw = ts.In(time.Local).Format(layout)
	}
	return term.Cyanf("[%s]", raw)
}
