package provider

import (
	"errors"
	"fmt"
	"sort"
)

// Registry resolves provider tags to their configured verifiers. It is
// assembled once at engine construction and read-only afterwards.
type Registry struct {
	verifiers map[string]Verifier
	tags      []string
}

// NewRegistry builds a registry from the given verifiers. Empty and
// duplicate tags fail construction.
func NewRegistry(verifiers ...Verifier) (*Registry, error) {
	r := &Registry{verifiers: make(map[string]Verifier, len(verifiers))}

	for _, v := range verifiers {
		tag := v.Tag()
		if tag == "" {
			return nil, errors.New("verifier has an empty provider tag")
		}
		if _, dup := r.verifiers[tag]; dup {
			return nil, fmt.Errorf("duplicate provider tag %q", tag)
		}
		r.verifiers[tag] = v
		r.tags = append(r.tags, tag)
	}
	sort.Strings(r.tags)

	return r, nil
}

// Get returns the verifier for tag, or ErrUnsupportedProvider.
func (r *Registry) Get(tag string) (Verifier, error) {
	v, ok := r.verifiers[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, tag)
	}
	return v, nil
}

// Tags returns the registered provider tags, sorted.
func (r *Registry) Tags() []string {
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// Len returns the number of registered verifiers.
func (r *Registry) Len() int { return len(r.verifiers) }
