package persisted

import (
	"sync"
)

// Registry maps query hashes to canonical query text.
//
// Entries are only ever added. The first value stored under a hash wins, so
// concurrent registrations of the same hash converge on one value.
type Registry struct {
	mu      sync.RWMutex
	queries map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		queries: make(map[string]string),
	}
}

// Register stores a canonical query under its own hash and returns the hash.
// Registering the same text again is a no-op.
func (r *Registry) Register(canonical string) string {
	hash := Hash(canonical)
	r.insert(hash, canonical)
	return hash
}

// RegisterRaw canonicalizes text and registers the result.
func (r *Registry) RegisterRaw(text string) (string, error) {
	canonical, err := Canonicalize(text)
	if err != nil {
		return "", err
	}
	return r.Register(canonical), nil
}

// Learn stores text under a hash declared by a client. The hash is trusted as
// given; only the text is checked, and it is stored in canonical form.
func (r *Registry) Learn(hash, text string) error {
	canonical, err := Canonicalize(text)
	if err != nil {
		return err
	}
	r.insert(hash, canonical)
	return nil
}

// Lookup returns the canonical query registered under hash.
func (r *Registry) Lookup(hash string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	query, ok := r.queries[hash]
	return query, ok
}

// Len returns the number of registered queries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queries)
}

// Snapshot returns a copy of the hash to query mapping
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.queries))
	for hash, query := range r.queries {
		out[hash] = query
	}
	return out
}

// insert adds hash if absent and reports whether it was added
func (r *Registry) insert(hash, canonical string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.queries[hash]; exists {
		return false
	}
	r.queries[hash] = canonical
	return true
}
