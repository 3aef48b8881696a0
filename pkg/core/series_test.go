package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_Last(t *testing.T) {
	s := Series[float64]{1, 2, 3, 4}
	require.Equal(t, 4.0, s.Last(0))
	require.Equal(t, 3.0, s.Last(1))
	require.Equal(t, Series[float64]{3, 4}, s.LastValues(2))
	require.Equal(t, s, s.LastValues(10))
}

func TestSeries_Cross(t *testing.T) {
	fast := Series[float64]{1, 2, 4}
	slow := Series[float64]{3, 3, 3}

	assert.True(t, fast.Crossover(slow))
	assert.False(t, fast.Crossunder(slow))
	assert.True(t, fast.Cross(slow))

	down := Series[float64]{5, 4, 2}
	assert.True(t, down.Crossunder(slow))
	assert.False(t, down.Crossover(slow))
}

func TestSeries_Levels(t *testing.T) {
	rsi := Series[float64]{25, 35}
	assert.True(t, rsi.CrossoverLevel(30))
	assert.False(t, rsi.CrossunderLevel(30))
	assert.True(t, rsi.Above(30))
	assert.False(t, rsi.Below(30))

	rsi = Series[float64]{75, 65}
	assert.True(t, rsi.CrossunderLevel(70))
}

func TestNumDecPlaces(t *testing.T) {
	assert.Equal(t, int64(0), NumDecPlaces(10))
	assert.Equal(t, int64(2), NumDecPlaces(1.25))
	assert.Equal(t, int64(5), NumDecPlaces(0.00001))
}
