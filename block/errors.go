// Package block implements the block codec: encoding and decoding of one
// self-describing, independently compressed sample block.
package block

import "errors"

var (
	// ErrCodecNotFound is returned when no codec is registered for a mode or UID.
	ErrCodecNotFound = errors.New("block: codec not found")

	// ErrInvalidBlock is returned when the header CRC does not match the payload.
	ErrInvalidBlock = errors.New("block: CRC mismatch")

	// ErrBlockTooShort is returned when the header claims more bytes than were delivered.
	ErrBlockTooShort = errors.New("block: header claims more bytes than supplied")

	// ErrUnknownAlgorithm is returned when the algorithm bits match no registered mode.
	ErrUnknownAlgorithm = errors.New("block: unknown algorithm")

	// ErrVDSOverLimit is returned when VDS anchor insertion exceeds the fixed spacing cap.
	ErrVDSOverLimit = errors.New("block: VDS anchor count exceeds per-segment cap")

	// ErrInvalidParameter indicates invalid encode/decode parameters.
	ErrInvalidParameter = errors.New("block: invalid parameter")
)
