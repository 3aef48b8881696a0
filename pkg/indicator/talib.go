// Package indicator wraps go-talib and adds a few indicators talib does not ship.
//
// Every function returns a slice as long as its input; positions inside the
// lookback window hold zero.
package indicator

import (
	"fmt"
	"strings"

	"github.com/markcheno/go-talib"
)

type MaType = talib.MaType

const (
	TypeSMA   = talib.SMA
	TypeEMA   = talib.EMA
	TypeWMA   = talib.WMA
	TypeDEMA  = talib.DEMA
	TypeTEMA  = talib.TEMA
	TypeTRIMA = talib.TRIMA
	TypeKAMA  = talib.KAMA
	TypeT3MA  = talib.T3MA
)

var maTypes = map[string]MaType{
	"sma":   TypeSMA,
	"ema":   TypeEMA,
	"wma":   TypeWMA,
	"dema":  TypeDEMA,
	"tema":  TypeTEMA,
	"trima": TypeTRIMA,
	"kama":  TypeKAMA,
	"t3":    TypeT3MA,
}

// MaTypeNames lists the names accepted by ParseMaType.
func MaTypeNames() []any {
	return []any{"sma", "ema", "wma", "dema", "tema", "trima", "kama", "t3"}
}

// ParseMaType resolves a moving average name such as "ema".
func ParseMaType(name string) (MaType, error) {
	if t, ok := maTypes[strings.ToLower(name)]; ok {
		return t, nil
	}
	return TypeSMA, fmt.Errorf("unknown moving average type %q", name)
}

// Overlap studies

// SMA is the simple moving average.
func SMA(input []float64, period int) []float64 { return talib.Sma(input, period) }

// EMA is the exponential moving average.
func EMA(input []float64, period int) []float64 { return talib.Ema(input, period) }

// WMA is the weighted moving average.
func WMA(input []float64, period int) []float64 { return talib.Wma(input, period) }

// MA is a moving average of the given kind.
func MA(input []float64, period int, maType MaType) []float64 {
	return talib.Ma(input, period, maType)
}

// BB returns the upper, middle and lower Bollinger bands.
func BB(input []float64, period int, deviation float64, maType MaType) ([]float64, []float64, []float64) {
	return talib.BBands(input, period, deviation, deviation, maType)
}

// SAR is the Parabolic Stop And Reverse.
func SAR(high, low []float64, acceleration, maximum float64) []float64 {
	return talib.Sar(high, low, acceleration, maximum)
}

// Momentum oscillators

// RSI is the relative strength index.
func RSI(input []float64, period int) []float64 { return talib.Rsi(input, period) }

// CCI is the commodity channel index.
func CCI(high, low, close []float64, period int) []float64 {
	return talib.Cci(high, low, close, period)
}

// ADX is the average directional index.
func ADX(high, low, close []float64, period int) []float64 {
	return talib.Adx(high, low, close, period)
}

// PlusDI is the positive directional indicator.
func PlusDI(high, low, close []float64, period int) []float64 {
	return talib.PlusDI(high, low, close, period)
}

// MinusDI is the negative directional indicator.
func MinusDI(high, low, close []float64, period int) []float64 {
	return talib.MinusDI(high, low, close, period)
}

// WilliamsR is Williams %R, between -100 and 0.
func WilliamsR(high, low, close []float64, period int) []float64 {
	return talib.WillR(high, low, close, period)
}

// MFI is the money flow index.
func MFI(high, low, close, volume []float64, period int) []float64 {
	return talib.Mfi(high, low, close, volume, period)
}

// Momentum is the difference with the value period rows back.
func Momentum(input []float64, period int) []float64 { return talib.Mom(input, period) }

// ROC is the rate of change in percent.
func ROC(input []float64, period int) []float64 { return talib.Roc(input, period) }

// MACD returns the MACD line, its signal line and the histogram.
func MACD(input []float64, fast, slow, signal int) ([]float64, []float64, []float64) {
	return talib.Macd(input, fast, slow, signal)
}

// Stoch returns the slow %K and %D lines.
func Stoch(high, low, close []float64, fastK, slowK int, slowKType MaType, slowD int, slowDType MaType) ([]float64, []float64) {
	return talib.Stoch(high, low, close, fastK, slowK, slowKType, slowD, slowDType)
}

// StochRSI returns the fast %K and %D lines of the stochastic applied to RSI.
func StochRSI(input []float64, period, fastK, fastD int, fastDType MaType) ([]float64, []float64) {
	return talib.StochRsi(input, period, fastK, fastD, fastDType)
}

// Aroon returns the aroon down and aroon up lines, in that order.
func Aroon(high, low []float64, period int) ([]float64, []float64) {
	return talib.Aroon(high, low, period)
}

// Volume and volatility

// OBV is the on balance volume.
func OBV(input, volume []float64) []float64 { return talib.Obv(input, volume) }

// ATR is the average true range.
func ATR(high, low, close []float64, period int) []float64 {
	return talib.Atr(high, low, close, period)
}

// StdDev is the rolling standard deviation scaled by deviations.
func StdDev(input []float64, period int, deviations float64) []float64 {
	return talib.StdDev(input, period, deviations)
}

// Rolling extremes

// Max is the highest value of the last period rows.
func Max(input []float64, period int) []float64 { return talib.Max(input, period) }

// Min is the lowest value of the last period rows.
func Min(input []float64, period int) []float64 { return talib.Min(input, period) }

// LinearRegSlope is the slope of the rolling least squares line.
func LinearRegSlope(input []float64, period int) []float64 {
	return talib.LinearRegSlope(input, period)
}
