// Package kernel implements the running-quantile filter and the
// critical-point (peak/trough) finder shared by the VDS block codec and
// the line-noise remover.
package kernel

import "sort"

// TailPolicy selects how RunningQuantile handles the span/2 samples at
// each end of the input, where a full window isn't yet available.
type TailPolicy int

const (
	// TailTruncate omits the partial-window output entirely: the
	// returned slice is shorter than x.
	TailTruncate TailPolicy = iota
	// TailExtrapolate replicates the first and last full-window
	// quantile value across the partial-window region.
	TailExtrapolate
	// TailZeroPad fills the partial-window region with zero.
	TailZeroPad
)

// RunningQuantile returns, for each valid center position, the value at
// the given quantile (0..1) of the span samples centered there. A span
// below 1 is treated as 1 and an even span is rounded up to the next odd
// value; quantile is clamped to [0,1].
//
// Some reference implementations keep a doubly-linked list of the window
// in value order with a pointer that drifts by ±½ per step; this one
// copies and sorts each window afresh (O(span log span) per step) because
// Go has no ordered-container primitive as
// cheap as a hand-rolled list, and the drift optimization only matters for
// adversarial span sizes this package is never called with (VDS template
// generation uses fixed small spans).
func RunningQuantile(x []float64, span int, quantile float64, tail TailPolicy) []float64 {
	if span < 1 {
		span = 1
	}
	if span%2 == 0 {
		span++
	}
	half := span / 2
	if quantile < 0 {
		quantile = 0
	}
	if quantile > 1 {
		quantile = 1
	}
	n := len(x)
	if n == 0 {
		return nil
	}

	qIdx := func(windowLen int) int {
		idx := int(quantile * float64(windowLen-1))
		if idx < 0 {
			idx = 0
		}
		if idx > windowLen-1 {
			idx = windowLen - 1
		}
		return idx
	}

	full := make([]float64, 0, n)
	for c := half; c < n-half; c++ {
		window := append([]float64(nil), x[c-half:c+half+1]...)
		sort.Float64s(window)
		full = append(full, window[qIdx(len(window))])
	}

	switch tail {
	case TailTruncate:
		return full
	case TailExtrapolate:
		out := make([]float64, n)
		for i := 0; i < half; i++ {
			out[i] = full[0]
		}
		copy(out[half:n-half], full)
		for i := n - half; i < n; i++ {
			out[i] = full[len(full)-1]
		}
		return out
	default: // TailZeroPad
		out := make([]float64, n)
		copy(out[half:n-half], full)
		return out
	}
}
