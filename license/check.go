package license

import "time"

// CacheStore is the cache-file I/O seam: production callers back it with
// the filesystem, tests back it with an in-memory string.
type CacheStore interface {
	Read() (string, error)
	Write(text string) error
}

// NetChecker is the server/internet-reachability seam used when a cache
// entry is missing or stale.
type NetChecker interface {
	// CheckServer contacts the license server for productCode and
	// machineCode, returning a fresh Entry on success.
	CheckServer(productCode, machineCode uint32) (Entry, error)

	// InternetReachable reports whether general internet connectivity
	// is up, consulted only when CheckServer has already failed.
	InternetReachable() bool
}

// degradedExtension is how far a timeout is pushed out when the server is
// unreachable but the network is otherwise up.
const degradedExtension = time.Hour

// Check runs the full license-check sequence for productCode on
// machineCode: consult the cache, and on a miss or a failed local check,
// round-trip to the server via net, falling back to a degraded one-hour
// extension when the server specifically (not the network generally) is
// unreachable.
func Check(productCode, machineCode uint32, cache CacheStore, net NetChecker, now time.Time) (Entry, error) {
	text, err := cache.Read()
	if err != nil {
		return fromServer(productCode, machineCode, cache, net, nil, now)
	}
	store, err := ParseCache(text)
	if err != nil {
		return fromServer(productCode, machineCode, cache, net, nil, now)
	}

	entry, ok := store.Find(productCode)
	if !ok {
		return fromServer(productCode, machineCode, cache, net, store, now)
	}
	if entry.MachineCode != machineCode {
		return Entry{}, ErrWrongMachine
	}
	if uint32(now.Unix()) <= entry.Timeout {
		return entry, nil
	}
	return fromServer(productCode, machineCode, cache, net, store, now)
}

// fromServer performs the server round-trip (or its degraded fallback)
// and persists the resulting entry into store (allocating one if nil).
func fromServer(productCode, machineCode uint32, cache CacheStore, net NetChecker, store *Cache, now time.Time) (Entry, error) {
	if store == nil {
		store = &Cache{}
	}

	entry, err := net.CheckServer(productCode, machineCode)
	if err != nil {
		if !net.InternetReachable() {
			return Entry{}, ErrServerUnreachable
		}
		existing, ok := store.Find(productCode)
		if !ok {
			existing = Entry{ProductCode: productCode, MachineCode: machineCode}
		}
		existing.Timeout = uint32(now.Add(degradedExtension).Unix())
		entry = existing
	}

	replaceEntry(store, entry)
	text, ferr := store.Format()
	if ferr == nil {
		_ = cache.Write(text)
	}
	return entry, nil
}

func replaceEntry(store *Cache, e Entry) {
	for i, existing := range store.Entries {
		if existing.ProductCode == e.ProductCode {
			store.Entries[i] = e
			return
		}
	}
	store.Entries = append(store.Entries, e)
}
