package jwk

import (
	"sort"
	"sync"
)

// Key is a typed public key built from a Record.
type Key interface {
	// ID returns the key identifier, or "" for an unidentified key.
	ID() string

	// SupportsAlgorithm reports whether the key can verify signatures made
	// with alg.
	SupportsAlgorithm(alg string) bool

	// Export returns the key as PEM-encoded SubjectPublicKeyInfo text.
	Export() (string, error)
}

// Factory builds a Key from a record whose kty matched its registration.
type Factory func(rec *Record) (Key, error)

// Key type tags.
const (
	KeyTypeRSA = "RSA"
	KeyTypeEC  = "EC"
)

// Registry maps key type tags to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// NewDefaultRegistry creates a registry with the RSA key type registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterRSA(r)
	return r
}

// Register adds the factory for kty. A later registration for the same tag
// replaces the earlier one.
func (r *Registry) Register(kty string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kty] = factory
}

// Create builds a Key for rec. ok is false when rec.Kty has no factory.
func (r *Registry) Create(rec *Record) (key Key, ok bool, err error) {
	r.mu.RLock()
	factory, exists := r.factories[rec.Kty]
	r.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	key, err = factory(rec)
	if err != nil || key == nil {
		return nil, false, err
	}
	return key, true, nil
}

// Types returns the registered key type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for kty := range r.factories {
		types = append(types, kty)
	}
	sort.Strings(types)
	return types
}
