package indicator

// LaguerreRSI is the four element Laguerre filter RSI. gamma in [0, 1) sets the
// damping: higher values react slower. Output is bounded to [0, 1].
func LaguerreRSI(close []float64, gamma float64) []float64 {
	out := make([]float64, len(close))
	if len(close) == 0 {
		return out
	}

	l0, l1, l2, l3 := close[0], close[0], close[0], close[0]
	for i, price := range close {
		p0, p1, p2 := l0, l1, l2

		l0 = (1-gamma)*price + gamma*p0
		l1 = -gamma*l0 + p0 + gamma*p1
		l2 = -gamma*l1 + p1 + gamma*p2
		l3 = -gamma*l2 + p2 + gamma*l3

		var up, down float64
		for _, diff := range [3]float64{l0 - l1, l1 - l2, l2 - l3} {
			if diff > 0 {
				up += diff
			} else {
				down -= diff
			}
		}

		if up+down != 0 {
			out[i] = up / (up + down)
		}
	}

	return out
}
