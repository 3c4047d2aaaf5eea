// Package numeric holds small generic numeric helpers used by the matrix
// package's resampling code.
package numeric

import "golang.org/x/exp/constraints"

// Clamp restricts v to the inclusive range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
