package order

import (
	"testing"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var positionStart = time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)

func filled(side core.SideType, qty, price float64, offset time.Duration) *core.Order {
	return &core.Order{
		Pair:      "BTCUSDT",
		Side:      side,
		Type:      core.OrderTypeMarket,
		Status:    core.OrderStatusTypeFilled,
		Quantity:  qty,
		Price:     price,
		CreatedAt: positionStart.Add(offset),
	}
}

func TestPosition_Update(t *testing.T) {
	t.Run("increase averages the entry", func(t *testing.T) {
		p := &Position{Side: core.SideTypeBuy, AvgPrice: 100, Quantity: 1, CreatedAt: positionStart}
		result, closed := p.Update(filled(core.SideTypeBuy, 1, 200, time.Hour))
		assert.Nil(t, result)
		assert.False(t, closed)
		assert.Equal(t, 150.0, p.AvgPrice)
		assert.Equal(t, 2.0, p.Quantity)
	})

	t.Run("partial close keeps the rest", func(t *testing.T) {
		p := &Position{Side: core.SideTypeBuy, AvgPrice: 100, Quantity: 2, CreatedAt: positionStart}
		order := filled(core.SideTypeSell, 1, 110, 2*time.Hour)
		result, closed := p.Update(order)
		require.NotNil(t, result)
		assert.False(t, closed)
		assert.InDelta(t, 0.1, result.ProfitPercent, 1e-9)
		assert.InDelta(t, 10, result.ProfitValue, 1e-9)
		assert.Equal(t, 2*time.Hour, result.Duration)
		assert.Equal(t, 1.0, p.Quantity)
		assert.InDelta(t, 10, order.ProfitValue, 1e-9)
	})

	t.Run("full close", func(t *testing.T) {
		p := &Position{Side: core.SideTypeBuy, AvgPrice: 100, Quantity: 1, CreatedAt: positionStart}
		result, closed := p.Update(filled(core.SideTypeSell, 1, 90, time.Hour))
		require.NotNil(t, result)
		assert.True(t, closed)
		assert.InDelta(t, -0.1, result.ProfitPercent, 1e-9)
		assert.InDelta(t, -10, result.ProfitValue, 1e-9)
	})

	t.Run("short profits when price falls", func(t *testing.T) {
		p := &Position{Side: core.SideTypeSell, AvgPrice: 100, Quantity: 1, CreatedAt: positionStart}
		result, closed := p.Update(filled(core.SideTypeBuy, 1, 80, time.Hour))
		require.NotNil(t, result)
		assert.True(t, closed)
		assert.InDelta(t, 0.2, result.ProfitPercent, 1e-9)
		assert.Equal(t, core.SideTypeSell, result.Side)
	})

	t.Run("flip opens the other side", func(t *testing.T) {
		p := &Position{Side: core.SideTypeBuy, AvgPrice: 100, Quantity: 1, CreatedAt: positionStart}
		result, closed := p.Update(filled(core.SideTypeSell, 3, 120, time.Hour))
		require.NotNil(t, result)
		assert.False(t, closed)
		assert.InDelta(t, 20, result.ProfitValue, 1e-9)
		assert.Equal(t, core.SideTypeSell, p.Side)
		assert.Equal(t, 2.0, p.Quantity)
		assert.Equal(t, 120.0, p.AvgPrice)
	})

	t.Run("stop orders fill at the stop", func(t *testing.T) {
		stop := 95.0
		p := &Position{Side: core.SideTypeBuy, AvgPrice: 100, Quantity: 1, CreatedAt: positionStart}
		order := filled(core.SideTypeSell, 1, 90, time.Hour)
		order.Type = core.OrderTypeStopLoss
		order.Stop = &stop
		result, _ := p.Update(order)
		require.NotNil(t, result)
		assert.InDelta(t, -0.05, result.ProfitPercent, 1e-9)
	})
}
