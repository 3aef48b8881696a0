package indicator

import (
	"math"
	"sort"
)

// PSquare estimates a single quantile of a stream in constant memory using the
// P² algorithm of Jain and Chlamtac. Until five observations have arrived the
// exact quantile of the seen values is returned.
type PSquare struct {
	p       float64
	count   int
	heights [5]float64
	pos     [5]float64
	desired [5]float64
	step    [5]float64
}

// NewPSquare creates an estimator for quantile p in (0, 1).
func NewPSquare(p float64) *PSquare {
	return &PSquare{p: p}
}

// Quantile returns the tracked quantile.
func (e *PSquare) Quantile() float64 { return e.p }

// Count returns how many observations were added.
func (e *PSquare) Count() int { return e.count }

// Add feeds one observation.
func (e *PSquare) Add(x float64) {
	if e.count < 5 {
		e.heights[e.count] = x
		e.count++
		if e.count == 5 {
			e.initMarkers()
		}
		return
	}
	e.count++

	var k int
	switch {
	case x < e.heights[0]:
		e.heights[0] = x
		k = 0
	case x >= e.heights[4]:
		e.heights[4] = x
		k = 3
	default:
		for k = 0; k < 3; k++ {
			if x < e.heights[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		e.pos[i]++
	}
	for i := range e.desired {
		e.desired[i] += e.step[i]
	}

	for i := 1; i <= 3; i++ {
		d := e.desired[i] - e.pos[i]
		if (d >= 1 && e.pos[i+1]-e.pos[i] > 1) || (d <= -1 && e.pos[i-1]-e.pos[i] < -1) {
			sign := math.Copysign(1, d)
			candidate := e.parabolic(i, sign)
			if e.heights[i-1] < candidate && candidate < e.heights[i+1] {
				e.heights[i] = candidate
			} else {
				e.heights[i] = e.linear(i, sign)
			}
			e.pos[i] += sign
		}
	}
}

// Value returns the current estimate, or NaN before the first observation.
func (e *PSquare) Value() float64 {
	switch {
	case e.count == 0:
		return math.NaN()
	case e.count < 5:
		seen := append([]float64(nil), e.heights[:e.count]...)
		sort.Float64s(seen)
		rank := e.p * float64(len(seen)-1)
		lo := int(math.Floor(rank))
		hi := int(math.Ceil(rank))
		return seen[lo] + (rank-float64(lo))*(seen[hi]-seen[lo])
	}
	return e.heights[2]
}

// initMarkers sorts the first five observations and sets up the marker positions
func (e *PSquare) initMarkers() {
	sort.Float64s(e.heights[:])
	p := e.p
	e.pos = [5]float64{1, 2, 3, 4, 5}
	e.desired = [5]float64{1, 1 + 2*p, 1 + 4*p, 3 + 2*p, 5}
	e.step = [5]float64{0, p / 2, p, (1 + p) / 2, 1}
}

// parabolic is the piecewise parabolic prediction of marker i moved by d
func (e *PSquare) parabolic(i int, d float64) float64 {
	q, n := e.heights, e.pos
	return q[i] + d/(n[i+1]-n[i-1])*
		((n[i]-n[i-1]+d)*(q[i+1]-q[i])/(n[i+1]-n[i])+
			(n[i+1]-n[i]-d)*(q[i]-q[i-1])/(n[i]-n[i-1]))
}

// linear is the fallback prediction when the parabolic one leaves the neighbours
func (e *PSquare) linear(i int, d float64) float64 {
	j := i + int(d)
	return e.heights[i] + d*(e.heights[j]-e.heights[i])/(e.pos[j]-e.pos[i])
}
