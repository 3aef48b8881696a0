package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootstrap(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, BootstrapInterval{}, Bootstrap(nil, Mean, 100, 0.95))
	})

	t.Run("constant sample", func(t *testing.T) {
		interval := Bootstrap([]float64{2, 2, 2, 2}, Mean, 200, 0.95)
		assert.Equal(t, 2.0, interval.Lower)
		assert.Equal(t, 2.0, interval.Upper)
		assert.Equal(t, 2.0, interval.Mean)
		assert.Zero(t, interval.StdDev)
	})

	t.Run("interval within sample range", func(t *testing.T) {
		values := []float64{-3, -1, 0, 1, 2, 4, 5, 7}
		interval := Bootstrap(values, Mean, 1000, 0.9)
		assert.LessOrEqual(t, interval.Lower, interval.Mean)
		assert.GreaterOrEqual(t, interval.Upper, interval.Mean)
		assert.GreaterOrEqual(t, interval.Lower, -3.0)
		assert.LessOrEqual(t, interval.Upper, 7.0)
		assert.Greater(t, interval.StdDev, 0.0)
	})
}

func TestPayoffAndProfitFactor(t *testing.T) {
	values := []float64{0.1, 0.2, -0.05, -0.15}
	assert.InDelta(t, 1.5, Payoff(values), 1e-9)
	assert.InDelta(t, 1.5, ProfitFactor(values), 1e-9)

	assert.Zero(t, Payoff([]float64{0.1}))
	assert.Zero(t, ProfitFactor([]float64{0.1}))
}
