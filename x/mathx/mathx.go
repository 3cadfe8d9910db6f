// Package mathx holds the small numeric helpers reading conversions need.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]; swapped bounds are accepted.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return max(lo, min(v, hi))
}

// Scale returns raw*num/den using 64-bit intermediates, for fixed-point
// sensor conversions. den == 0 returns 0.
func Scale[T constraints.Integer](raw T, num, den int64) int64 {
	if den == 0 {
		return 0
	}
	return int64(raw) * num / den
}

// Wrap360 folds a heading in degrees into [0, 360).
func Wrap360(deg float32) float32 {
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	return deg
}
