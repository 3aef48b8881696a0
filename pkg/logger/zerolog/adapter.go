package zerolog

import (
	"fmt"

	"github.com/raykavin/stratbook/pkg/logger"
	"github.com/rs/zerolog"
)

// Adapter exposes a zerolog.Logger through logger.Logger.
type Adapter struct {
	zl *zerolog.Logger
}

var _ logger.Logger = (*Adapter)(nil)

// NewAdapter wraps zl as a logger.Logger
func NewAdapter(zl *zerolog.Logger) *Adapter {
	return &Adapter{zl: zl}
}

// Zerolog returns the wrapped logger.
func (a *Adapter) Zerolog() *zerolog.Logger {
	return a.zl
}

// GetLevel implements logger.Logger.
func (a *Adapter) GetLevel() logger.Level {
	return fromZerolog(zerolog.GlobalLevel())
}

// SetLevel changes the global zerolog level, so it affects every child logger.
func (a *Adapter) SetLevel(level logger.Level) {
	zerolog.SetGlobalLevel(toZerolog(level))
}

// Print implements logger.Logger.
func (a *Adapter) Print(args ...any) {
	a.zl.Print(args...)
}

// Trace implements logger.Logger.
func (a *Adapter) Trace(args ...any) {
	a.zl.Trace().Msg(fmt.Sprint(args...))
}

// Debug implements logger.Logger.
func (a *Adapter) Debug(args ...any) {
	a.zl.Debug().Msg(fmt.Sprint(args...))
}

// Info implements logger.Logger.
func (a *Adapter) Info(args ...any) {
	a.zl.Info().Msg(fmt.Sprint(args...))
}

// Warn implements logger.Logger.
func (a *Adapter) Warn(args ...any) {
	a.zl.Warn().Msg(fmt.Sprint(args...))
}

// Error implements logger.Logger.
func (a *Adapter) Error(args ...any) {
	a.zl.Error().Msg(fmt.Sprint(args...))
}

// Fatal implements logger.Logger.
func (a *Adapter) Fatal(args ...any) {
	a.zl.Fatal().Msg(fmt.Sprint(args...))
}

// Panic implements logger.Logger.
func (a *Adapter) Panic(args ...any) {
	a.zl.Panic().Msg(fmt.Sprint(args...))
}

// Printf implements logger.Logger.
func (a *Adapter) Printf(format string, args ...any) {
	a.zl.Printf(format, args...)
}

// Tracef implements logger.Logger.
func (a *Adapter) Tracef(format string, args ...any) {
	a.zl.Trace().Msgf(format, args...)
}

// Debugf implements logger.Logger.
func (a *Adapter) Debugf(format string, args ...any) {
	a.zl.Debug().Msgf(format, args...)
}

// Infof implements logger.Logger.
func (a *Adapter) Infof(format string, args ...any) {
	a.zl.Info().Msgf(format, args...)
}

// Warnf implements logger.Logger.
func (a *Adapter) Warnf(format string, args ...any) {
	a.zl.Warn().Msgf(format, args...)
}

// Errorf implements logger.Logger.
func (a *Adapter) Errorf(format string, args ...any) {
	a.zl.Error().Msgf(format, args...)
}

// Fatalf implements logger.Logger.
func (a *Adapter) Fatalf(format string, args ...any) {
	a.zl.Fatal().Msgf(format, args...)
}

// Panicf implements logger.Logger.
func (a *Adapter) Panicf(format string, args ...any) {
	a.zl.Panic().Msgf(format, args...)
}

// WithError implements logger.Logger.
func (a *Adapter) WithError(err error) logger.Logger {
	child := a.zl.With().Err(err).Logger()
	return &Adapter{zl: &child}
}

// WithField implements logger.Logger.
func (a *Adapter) WithField(key string, value any) logger.Logger {
	child := a.zl.With().Interface(key, value).Logger()
	return &Adapter{zl: &child}
}

// WithFields implements logger.Logger.
func (a *Adapter) WithFields(fields map[string]any) logger.Logger {
	child := a.zl.With().Fields(fields).Logger()
	return &Adapter{zl: &child}
}

var levels = []struct {
	ours   logger.Level
	theirs zerolog.Level
}{
	{logger.Disabled, zerolog.Disabled},
	{logger.TraceLevel, zerolog.TraceLevel},
	{logger.DebugLevel, zerolog.DebugLevel},
	{logger.InfoLevel, zerolog.InfoLevel},
	{logger.WarnLevel, zerolog.WarnLevel},
	{logger.ErrorLevel, zerolog.ErrorLevel},
	{logger.FatalLevel, zerolog.FatalLevel},
	{logger.PanicLevel, zerolog.PanicLevel},
	{logger.NoLevel, zerolog.NoLevel},
}

func fromZerolog(level zerolog.Level) logger.Level {
	for _, l := range levels {
		if l.theirs == level {
			return l.ours
		}
	}
	return logger.NoLevel
}

func toZerolog(level logger.Level) zerolog.Level {
	for _, l := range levels {
		if l.ours == level {
			return l.theirs
		}
	}
	return zerolog.NoLevel
}
