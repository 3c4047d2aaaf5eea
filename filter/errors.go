// Package filter designs Butterworth IIR filters and applies zero-phase
// forward-reverse filtering with reflective padding.
package filter

import "errors"

var (
	// ErrBadCutoffs is returned when cutoff frequencies are missing,
	// out of [0, fs/2), or ordered incorrectly for the requested Kind.
	ErrBadCutoffs = errors.New("filter: bad cutoff frequencies")

	// ErrBadOrder is returned for a non-positive filter order.
	ErrBadOrder = errors.New("filter: bad order")

	// ErrDataTooShortForPad is returned by FiltFilt when the input is
	// shorter than the filter's required reflective-padding length.
	ErrDataTooShortForPad = errors.New("filter: data shorter than pad length")

	// ErrFilterDesignNonFinite is returned when filter design produces a
	// non-finite coefficient (NaN/Inf), typically from a degenerate
	// cutoff/order/sampling-rate combination.
	ErrFilterDesignNonFinite = errors.New("filter: design produced non-finite coefficients")
)
