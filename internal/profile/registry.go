package profile

import (
	"strings"

	"fjacquet/extracto-ofx/internal/parsererror"
)

// Registry is the closed set of known profiles.
type Registry struct {
	order    []string
	profiles map[string]Profile
}

// NewRegistry returns a registry holding the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range builtins() {
		r.order = append(r.order, p.ID)
		r.profiles[p.ID] = p
	}
	return r
}

// Get returns a copy of the profile for id. Lookup ignores case and
// surrounding whitespace.
func (r *Registry) Get(id string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	p, ok := r.profiles[key]
	if !ok {
		return Profile{}, &parsererror.UnknownSourceError{Source: id, Supported: r.IDs()}
	}
	return p.clone(), nil
}

// IDs lists the known profile identifiers in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// All returns copies of every profile in registration order.
func (r *Registry) All() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id].clone())
	}
	return out
}
