package strategies

import "github.com/raykavin/stratbook/pkg/strategy"

func tunable[T strategy.Tunable](constructor func() T) func() strategy.Tunable {
	return func() strategy.Tunable { return constructor() }
}

// Definitions returns every catalog entry.
func Definitions() []strategy.Definition {
	return []strategy.Definition{
		// trend following
		{Name: "ema_cross", Description: "EMA crossing an SMA", Tags: []string{"trend"}, New: tunable(NewEMACross)},
		{Name: "ma_cross", Description: "Cross of two moving averages of a selectable kind", Tags: []string{"trend"}, New: tunable(NewMACross)},
		{Name: "triple_ema", Description: "Three aligned EMAs with a protective stop", Tags: []string{"trend", "stop"}, New: tunable(NewTripleEMA)},
		{Name: "macd_cross", Description: "MACD crossing its signal line", Tags: []string{"trend", "momentum"}, New: tunable(NewMACDCross)},
		{Name: "supertrend", Description: "SuperTrend direction flips", Tags: []string{"trend", "volatility"}, New: tunable(NewSuperTrend)},
		{Name: "adx_trend", Description: "Directional index cross confirmed by ADX", Tags: []string{"trend"}, New: tunable(NewADXTrend)},
		{Name: "parabolic_sar", Description: "Close crossing the parabolic SAR", Tags: []string{"trend"}, New: tunable(NewParabolicSAR)},
		{Name: "aroon_cross", Description: "Aroon up crossing Aroon down", Tags: []string{"trend"}, New: tunable(NewAroonCross)},

		// oscillators
		{Name: "rsi_threshold", Description: "RSI leaving the oversold and overbought zones", Tags: []string{"oscillator", "mean-reversion"}, New: tunable(NewRSIThreshold)},
		{Name: "stochastic", Description: "Stochastic %K/%D cross inside the zones", Tags: []string{"oscillator"}, New: tunable(NewStochastic)},
		{Name: "stoch_rsi", Description: "Stochastic RSI cross inside the zones", Tags: []string{"oscillator"}, New: tunable(NewStochRSI)},
		{Name: "williams_r", Description: "Williams %R thresholds", Tags: []string{"oscillator"}, New: tunable(NewWilliamsR)},
		{Name: "cci_reversal", Description: "CCI crossing back inside its levels", Tags: []string{"oscillator", "mean-reversion"}, New: tunable(NewCCIReversal)},
		{Name: "mfi_threshold", Description: "Money flow index thresholds", Tags: []string{"oscillator", "volume"}, New: tunable(NewMFIThreshold)},
		{Name: "laguerre_rsi", Description: "Laguerre RSI crossing its levels", Tags: []string{"oscillator"}, New: tunable(NewLaguerreRSI)},

		// bands and breakouts
		{Name: "bollinger_rsi", Description: "Lower Bollinger band with oversold RSI, exit at the middle band", Tags: []string{"mean-reversion", "volatility", "stop"}, New: tunable(NewBollingerRSI)},
		{Name: "turtle", Description: "Donchian channel breakout", Tags: []string{"breakout", "trend"}, New: tunable(NewTurtle)},
		{Name: "keltner_breakout", Description: "Close above the upper Keltner band", Tags: []string{"breakout", "volatility"}, New: tunable(NewKeltnerBreakout)},
		{Name: "volume_breakout", Description: "New high on a volume surge", Tags: []string{"breakout", "volume"}, New: tunable(NewVolumeBreakout)},
		{Name: "qstick", Description: "Average candle body crossing zero", Tags: []string{"momentum"}, New: tunable(NewQStick)},
		{Name: "heikin_ashi", Description: "Streaks of Heikin Ashi candles", Tags: []string{"trend"}, New: tunable(NewHeikinAshi)},

		// statistical
		{Name: "hurst_regime", Description: "Trend or mean reversion chosen by the Hurst exponent", Tags: []string{"statistical", "regime"}, New: tunable(NewHurstRegime)},
		{Name: "psquare_channel", Description: "Streaming percentile channel of the close", Tags: []string{"statistical", "mean-reversion"}, New: tunable(NewPSquareChannel)},

		// candlestick patterns
		{Name: "candle_pattern", Description: "Bullish patterns buy, bearish patterns sell", Tags: []string{"pattern"}, New: tunable(NewCandlePattern)},
		{Name: "engulfing", Description: "Bullish and bearish engulfing", Tags: []string{"pattern"}, New: tunable(newPatternPreset("bullish_engulfing", "bearish_engulfing"))},
		{Name: "hammer", Description: "Hammer and shooting star", Tags: []string{"pattern"}, New: tunable(newPatternPreset("hammer", "shooting_star"))},
		{Name: "morning_star", Description: "Morning star and evening star", Tags: []string{"pattern"}, New: tunable(newPatternPreset("morning_star", "evening_star"))},
		{Name: "three_soldiers", Description: "Three white soldiers and three black crows", Tags: []string{"pattern"}, New: tunable(newPatternPreset("three_white_soldiers", "three_black_crows"))},
		{Name: "piercing", Description: "Piercing line and dark cloud cover", Tags: []string{"pattern"}, New: tunable(newPatternPreset("piercing_line", "dark_cloud_cover"))},

		// order management
		{Name: "trailing_stop", Description: "EMA/SMA entry with a trailing stop exit", Tags: []string{"trend", "stop", "high-frequency"}, New: tunable(NewTrailingStop)},
		{Name: "oco_bracket", Description: "Stochastic entry bracketed by an OCO take profit and stop", Tags: []string{"oscillator", "stop"}, New: tunable(NewOCOBracket)},
		{Name: "scheduled_cross", Description: "EMA cross and RSI conditions armed as scheduled orders", Tags: []string{"trend"}, New: tunable(NewScheduledCross)},

		// position sizing
		{Name: "grid", Description: "Ladder of limit buys, each sold one spacing higher", Tags: []string{"grid", "sizing"}, New: tunable(NewGrid)},
		{Name: "martingale", Description: "RSI entries scaled up after losses", Tags: []string{"sizing", "oscillator"}, New: tunable(NewMartingale)},
		{Name: "dca", Description: "Periodic purchases sold above the average price", Tags: []string{"sizing"}, New: tunable(NewDCA)},
		{Name: "portfolio_rebalance", Description: "Keeps every pair near a target share of the equity", Tags: []string{"sizing", "portfolio"}, New: tunable(NewPortfolioRebalance)},
	}
}

// Register adds the whole catalog to r.
func Register(r *strategy.Registry) error {
	return r.Register(Definitions()...)
}

// NewRegistry returns a registry holding the whole catalog.
func NewRegistry() *strategy.Registry {
	r := strategy.NewRegistry()
	r.MustRegister(Definitions()...)
	return r
}
