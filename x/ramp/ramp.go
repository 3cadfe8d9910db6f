// Package ramp steps an integer level towards a target over time.
package ramp

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Wait sleeps for d and reports whether to continue.
type Wait func(d time.Duration) bool

// Linear moves from cur to to in steps equal slices of total, calling set
// for every level change. The final call always sets to, unless wait stops
// the ramp early. steps <= 1 or total <= 0 sets to at once.
func Linear[T constraints.Integer](cur, to T, total time.Duration, steps int, wait Wait, set func(T)) {
	if steps <= 1 || total <= 0 {
		set(to)
		return
	}
	step := total / time.Duration(steps)
	if step <= 0 {
		step = time.Millisecond
	}
	from, d := int64(cur), int64(to)-int64(cur)
	last := from
	for i := 1; i < steps; i++ {
		if !wait(step) {
			return
		}
		lvl := from + d*int64(i)/int64(steps)
		if lvl != last {
			last = lvl
			set(T(lvl))
		}
	}
	if wait(step) {
		set(to)
	}
}
