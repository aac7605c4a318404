package template

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInheritanceCycle is returned when a template inherits, directly or
	// through other templates, from itself.
	ErrInheritanceCycle = errors.New("template: inheritance cycle")

	// ErrUnknownTemplate is returned when an inherited template is not
	// registered.
	ErrUnknownTemplate = errors.New("template: unknown template")

	// ErrUnnamed is returned when registering a definition without a name.
	ErrUnnamed = errors.New("template: definition has no name")
)

// Registry holds named templates. Definitions are copied on the way in, so
// later changes by the caller never reach a registered template.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates an empty template registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register stores a copy of def under def.Name, replacing any previous
// definition for later expansions. A definition that would close an
// inheritance cycle among the registered templates is rejected and the
// previous definition is kept.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Name == "" {
		return ErrUnnamed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if chain, ok := r.cycleLocked(def); ok {
		return fmt.Errorf("%w: %s", ErrInheritanceCycle, strings.Join(chain, " -> "))
	}
	r.defs[def.Name] = def.Clone()
	return nil
}

// cycleLocked reports whether registering def would make def.Name reachable
// from its own inherits. Unknown templates are ignored here; they fail at
// expansion time.
func (r *Registry) cycleLocked(def *Definition) ([]string, bool) {
	lookup := func(name string) *Definition {
		if name == def.Name {
			return def
		}
		return r.defs[name]
	}
	var visit func(name string, path []string, seen map[string]bool) ([]string, bool)
	visit = func(name string, path []string, seen map[string]bool) ([]string, bool) {
		d := lookup(name)
		if d == nil {
			return nil, false
		}
		for _, parent := range inheritsOf(d) {
			next := append(slices.Clone(path), parent)
			if parent == def.Name {
				return next, true
			}
			if seen[parent] {
				continue
			}
			seen[parent] = true
			if chain, ok := visit(parent, next, seen); ok {
				return chain, true
			}
		}
		return nil, false
	}
	return visit(def.Name, []string{def.Name}, map[string]bool{})
}

// inheritsOf returns every template name d or any of its children inherit.
func inheritsOf(d *Definition) []string {
	out := slices.Clone(d.Inherits)
	for _, c := range d.Children {
		out = append(out, inheritsOf(c)...)
	}
	return out
}

// Lookup returns a copy of the template registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Remove deletes a template. Plans already expanded are unaffected.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, name)
}

// Reset removes every template.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[string]*Definition)
}

func (r *Registry) get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}
