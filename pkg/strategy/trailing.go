package strategy

// TrailingStop follows the highest price seen since Start and keeps the stop the
// same distance below it.
type TrailingStop struct {
	highest float64
	stop    float64
	active  bool
}

// NewTrailingStop creates a new inactive trailing stop
func NewTrailingStop() *TrailingStop {
	return &TrailingStop{}
}

// Start arms the stop at stop, with current as the reference high.
func (t *TrailingStop) Start(current, stop float64) {
	t.highest = current
	t.stop = stop
	t.active = true
}

// Stop disarms the trailing stop
func (t *TrailingStop) Stop() {
	t.active = false
}

// Active reports whether the stop is armed
func (t *TrailingStop) Active() bool {
	return t.active
}

// Level returns the current stop price.
func (t *TrailingStop) Level() float64 {
	return t.stop
}

// Update moves the stop up with new highs and reports whether price reached the stop.
func (t *TrailingStop) Update(price float64) bool {
	if !t.active {
		return false
	}

	if price > t.highest {
		t.stop += price - t.highest
		t.highest = price
	}

	return price <= t.stop
}
