package strategy

import (
	"math"
	"sort"
)

// FixedFraction returns the share of capital to commit, with fraction clamped to [0, 1].
func FixedFraction(capital, fraction float64) float64 {
	return capital * math.Max(0, math.Min(1, fraction))
}

// RiskBased sizes a position so that hitting the stop loses riskFraction of capital.
// It returns the asset quantity, or zero when entry and stop coincide.
func RiskBased(capital, riskFraction, entry, stop float64) float64 {
	distance := math.Abs(entry - stop)
	if distance == 0 {
		return 0
	}
	return capital * riskFraction / distance
}

// Martingale scales a base size by Multiplier after every loss, up to MaxSteps
// consecutive losses, and resets after a win.
type Martingale struct {
	Base       float64
	Multiplier float64
	MaxSteps   int

	step int
}

// NewMartingale creates a new Martingale sizer at step zero
func NewMartingale(base, multiplier float64, maxSteps int) *Martingale {
	return &Martingale{Base: base, Multiplier: multiplier, MaxSteps: maxSteps}
}

// Size returns the size of the next trade.
func (m *Martingale) Size() float64 {
	return m.Base * math.Pow(m.Multiplier, float64(m.step))
}

// Step returns the number of consecutive losses counted
func (m *Martingale) Step() int {
	return m.step
}

// OnLoss moves one step up, unless MaxSteps is reached
func (m *Martingale) OnLoss() {
	if m.step < m.MaxSteps {
		m.step++
	}
}

// OnWin resets the sizer to the base size
func (m *Martingale) OnWin() {
	m.step = 0
}

// GridLevels returns levels prices on each side of center, spaced by a fraction
// of center, in ascending order. The center itself is not a level.
func GridLevels(center, spacing float64, levels int) []float64 {
	prices := make([]float64, 0, levels*2)
	for i := 1; i <= levels; i++ {
		prices = append(prices, center*(1-spacing*float64(i)), center*(1+spacing*float64(i)))
	}
	sort.Float64s(prices)
	return prices
}

// Grid is a fixed ladder of price levels around a center.
type Grid struct {
	Center  float64
	Spacing float64
	prices  []float64
}

// NewGrid creates a new ladder of levels on each side of center
func NewGrid(center, spacing float64, levels int) *Grid {
	return &Grid{
		Center:  center,
		Spacing: spacing,
		prices:  GridLevels(center, spacing, levels),
	}
}

// Prices returns every level in ascending order.
func (g *Grid) Prices() []float64 {
	return g.prices
}

// BuyLevels returns the levels below the center.
func (g *Grid) BuyLevels() []float64 {
	var out []float64
	for _, p := range g.prices {
		if p < g.Center {
			out = append(out, p)
		}
	}
	return out
}

// TakeProfit returns the exit price for a fill at level, one spacing above it.
func (g *Grid) TakeProfit(level float64) float64 {
	return level + g.Center*g.Spacing
}

// Contains reports whether price lies between the lowest and highest level.
func (g *Grid) Contains(price float64) bool {
	if len(g.prices) == 0 {
		return false
	}
	return price >= g.prices[0] && price <= g.prices[len(g.prices)-1]
}
