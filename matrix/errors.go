// Package matrix assembles a two-dimensional (channel, sample) view of a
// session's data: one worker per active channel decodes its intersecting
// blocks, optionally filters and resamples them onto a common grid, and
// places the result into typed matrix cells with discontinuity handling.
package matrix

import "errors"

var (
	// ErrInvalidSlice is returned when the caller's slice is malformed.
	ErrInvalidSlice = errors.New("matrix: invalid slice")

	// ErrUnknownFlag is returned for an unrecognized combination of
	// extent/filter/resample/discontinuity modes.
	ErrUnknownFlag = errors.New("matrix: unknown flag")

	// ErrInvalidDimensions is returned when a caller-supplied matrix's
	// dimensions don't match the request.
	ErrInvalidDimensions = errors.New("matrix: invalid dimensions")

	// ErrNoActiveChannels is returned when the session has no active
	// channels to assemble.
	ErrNoActiveChannels = errors.New("matrix: no active channels")

	// ErrUnsupportedElementType is returned for an ElementType outside
	// {Si2, Si4, F32, F64}.
	ErrUnsupportedElementType = errors.New("matrix: unsupported element type")

	// ErrCountAndFreqIncompatible is returned when COUNT_AND_FREQ extent
	// mode is combined with a NaN- or zero-fill discontinuity mode.
	ErrCountAndFreqIncompatible = errors.New("matrix: COUNT_AND_FREQ is incompatible with NaN/zero discontinuity fill")
)

// ChannelError pairs a channel name with the error its worker hit.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string { return "matrix: channel " + e.Channel + ": " + e.Err.Error() }
func (e *ChannelError) Unwrap() error { return e.Err }

// PartialMatrixError is returned by GetMatrix when one or more channel
// workers failed; the matrix itself is still usable for the channels that
// succeeded, with Valid false for the rest.
type PartialMatrixError struct {
	Errors []*ChannelError
}

func (e *PartialMatrixError) Error() string {
	s := "matrix: partial failure ("
	for i, ce := range e.Errors {
		if i > 0 {
			s += ", "
		}
		s += ce.Error()
	}
	return s + ")"
}
