// Package transport implements the 16-byte-header wire frame used for
// license-check round-trips and streaming-data requests: a fixed header
// followed by an optionally AES-ECB-encrypted body, sent and received over
// any net.Conn.
package transport

import "errors"

var (
	// ErrSocketOpenFailed is returned when dialing a peer fails.
	ErrSocketOpenFailed = errors.New("transport: socket open failed")

	// ErrSocketClosed is returned when the peer closes mid-frame.
	ErrSocketClosed = errors.New("transport: socket closed mid-frame")

	// ErrIDMismatch is returned when a received frame's ID doesn't match
	// the caller-supplied expectation.
	ErrIDMismatch = errors.New("transport: frame ID mismatch")

	// ErrTimeout is returned when a receive exceeds its deadline.
	ErrTimeout = errors.New("transport: timeout")

	// ErrBodyNotPadded is returned when a caller asks to encrypt a body
	// whose length isn't a multiple of the AES block size.
	ErrBodyNotPadded = errors.New("transport: body not padded to a 16-byte multiple")
)
