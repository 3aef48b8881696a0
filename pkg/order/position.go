package order

import (
	"math"
	"time"

	"github.com/raykavin/stratbook/pkg/core"
)

// TradeResult is the outcome of closing (part of) a position.
type TradeResult struct {
	Pair          string
	ProfitPercent float64
	ProfitValue   float64
	Side          core.SideType
	Duration      time.Duration
	CreatedAt     time.Time
}

// Position is the open exposure of a pair, averaged over its entries.
type Position struct {
	Side      core.SideType
	CreatedAt time.Time
	AvgPrice  float64
	Quantity  float64
}

const quantityEpsilon = 1e-9

func executionPrice(order *core.Order) float64 {
	if (order.Type == core.OrderTypeStopLoss || order.Type == core.OrderTypeStopLossLimit) && order.Stop != nil {
		return *order.Stop
	}
	return order.Price
}

// Update applies a filled order. Orders on the position side add to it; orders on
// the other side close it, partially or fully, and may flip it. A result is
// returned whenever something was closed, and the order gets its profit fields set.
func (p *Position) Update(order *core.Order) (result *TradeResult, closed bool) {
	price := executionPrice(order)

	if p.Side == order.Side {
		p.AvgPrice = (p.AvgPrice*p.Quantity + price*order.Quantity) / (p.Quantity + order.Quantity)
		p.Quantity += order.Quantity
		return nil, false
	}

	closedQuantity := math.Min(p.Quantity, order.Quantity)
	profitPercent := (price - p.AvgPrice) / p.AvgPrice
	if p.Side == core.SideTypeSell {
		profitPercent = -profitPercent
	}
	profitValue := profitPercent * p.AvgPrice * closedQuantity

	order.Profit = profitPercent
	order.ProfitValue = profitValue

	result = &TradeResult{
		Pair:          order.Pair,
		ProfitPercent: profitPercent,
		ProfitValue:   profitValue,
		Side:          p.Side,
		Duration:      order.CreatedAt.Sub(p.CreatedAt),
		CreatedAt:     order.CreatedAt,
	}

	switch {
	case math.Abs(order.Quantity-p.Quantity) <= quantityEpsilon*p.Quantity:
		closed = true
	case order.Quantity < p.Quantity:
		p.Quantity -= order.Quantity
	default:
		p.Quantity = order.Quantity - p.Quantity
		p.Side = order.Side
		p.CreatedAt = order.CreatedAt
		p.AvgPrice = price
	}

	return result, closed
}
