package block

import "sync"

// Registry maps a Mode's name or UID to its Codec implementation, using the
// same RWMutex-guarded name/UID double-keying pattern as an image transfer-
// syntax codec registry, generalized here to block algorithm codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

var defaultRegistry = &Registry{codecs: make(map[string]Codec)}

// Register adds codec to the default registry, keyed by both its Mode's
// name and its UID.
func Register(codec Codec) { defaultRegistry.Register(codec) }

// Get retrieves a codec from the default registry by name or UID.
func Get(nameOrUID string) (Codec, error) { return defaultRegistry.Get(nameOrUID) }

// List returns all distinct codecs in the default registry.
func List() []Codec { return defaultRegistry.List() }

// Register adds codec, keyed by both its Mode's name and its UID.
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[codec.Mode().String()] = codec
	r.codecs[codec.UID()] = codec
}

// Get retrieves a codec by name or UID.
func (r *Registry) Get(nameOrUID string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[nameOrUID]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return c, nil
}

// List returns all distinct registered codecs.
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[Codec]bool)
	out := make([]Codec, 0, len(r.codecs))
	for _, c := range r.codecs {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
