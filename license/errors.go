// Package license implements the process-initialization license check: a
// local cache file is consulted first, and a server round-trip (or, when
// the server is unreachable but the network is up, a degraded one-hour
// extension) backs up a missing or stale entry.
package license

import "errors"

var (
	// ErrNoLicense is returned by ParseCache for cache text without a
	// valid customer-code header and by the entry cipher helpers for a
	// malformed block. Check does not return it: an unreadable cache or a
	// missing entry goes to the server, and on a failed server round-trip
	// with the internet reachable a new entry is granted the degraded
	// one-hour extension.
	ErrNoLicense = errors.New("license: no license")

	// ErrExpiredLicense reports an expired license. Check does not return
	// it: an expired entry goes to the server, and when neither the server
	// nor the internet is reachable Check returns ErrServerUnreachable.
	ErrExpiredLicense = errors.New("license: expired")

	// ErrWrongMachine is returned when the entry's machine code doesn't
	// match the local machine.
	ErrWrongMachine = errors.New("license: wrong machine")

	// ErrServerUnreachable is returned when a server round-trip was
	// required, the server could not be reached, and the network itself
	// is also unreachable (so no degraded extension is possible either).
	ErrServerUnreachable = errors.New("license: server unreachable")
)
