// Package session models the in-memory session -> channel -> segment
// hierarchy: lazy segment opening, time-slice conditioning, and the
// contiguon list the matrix assembler renders against.
package session

import "errors"

var (
	// ErrNoChannels is returned by Open when a session has no channels.
	ErrNoChannels = errors.New("session: no channels")

	// ErrNoReferenceChannel is returned when a sample-based slice must be
	// rescaled to a channel whose rate differs from the reference
	// channel's, and the reference channel's sampling frequency is zero.
	ErrNoReferenceChannel = errors.New("session: no reference channel")

	// ErrInvalidSlice is returned when a slice's end is before its start
	// or its Mode is neither SliceByTime nor SliceBySample.
	ErrInvalidSlice = errors.New("session: invalid slice")

	// ErrChannelNotActive is returned by operations that require an active
	// channel.
	ErrChannelNotActive = errors.New("session: channel not active")

	// ErrSegmentOpenFailed wraps a FileOpener failure for a segment.
	ErrSegmentOpenFailed = errors.New("session: segment open failed")

	// ErrShortRead is returned when a segment's data file ends mid-block.
	ErrShortRead = errors.New("session: short read")
)
