package core

import (
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Series is an ordered sequence of values where the newest value is the last element.
type Series[T constraints.Ordered] []T

// Values returns the underlying slice.
func (s Series[T]) Values() []T {
	return s
}

// Length returns the number of values.
func (s Series[T]) Length() int {
	return len(s)
}

// Last returns the value position steps back from the newest one.
// Last(0) is the newest value.
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues returns the newest size values, or the whole series when it is shorter.
func (s Series[T]) LastValues(size int) Series[T] {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Crossover reports whether s moved from at-or-below ref to above it on the newest value.
func (s Series[T]) Crossover(ref Series[T]) bool {
	return s.Last(0) > ref.Last(0) && s.Last(1) <= ref.Last(1)
}

// Crossunder reports whether s moved from above ref to at-or-below it on the newest value.
func (s Series[T]) Crossunder(ref Series[T]) bool {
	return s.Last(0) <= ref.Last(0) && s.Last(1) > ref.Last(1)
}

// Cross reports a crossover or a crossunder.
func (s Series[T]) Cross(ref Series[T]) bool {
	return s.Crossover(ref) || s.Crossunder(ref)
}

// Above reports whether the newest value is strictly above the level.
func (s Series[T]) Above(level T) bool {
	return s.Last(0) > level
}

// Below reports whether the newest value is strictly below the level.
func (s Series[T]) Below(level T) bool {
	return s.Last(0) < level
}

// CrossoverLevel reports whether s crossed above a constant level.
func (s Series[T]) CrossoverLevel(level T) bool {
	return s.Last(0) > level && s.Last(1) <= level
}

// CrossunderLevel reports whether s crossed below a constant level.
func (s Series[T]) CrossunderLevel(level T) bool {
	return s.Last(0) < level && s.Last(1) >= level
}

// NumDecPlaces returns how many decimal places v needs to be printed exactly.
func NumDecPlaces(v float64) int64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i > -1 {
		return int64(len(s) - i - 1)
	}
	return 0
}
