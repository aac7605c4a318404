package script

import (
	"maps"
	"slices"

	"github.com/addonsim/uisim/pkg/widget"
)

// Bindings maps (widget, handler name) to an ordered handler chain.
// Behavior bundles never add entries here; only explicit declarations do.
type Bindings struct {
	chains map[widget.ID]map[string][]Handler
}

// NewBindings creates an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{chains: make(map[widget.ID]map[string][]Handler)}
}

func (b *Bindings) table(id widget.ID) map[string][]Handler {
	t, ok := b.chains[id]
	if !ok {
		t = make(map[string][]Handler)
		b.chains[id] = t
	}
	return t
}

// Set replaces the chain for name with h. A zero handler clears it.
func (b *Bindings) Set(id widget.ID, name string, h Handler) {
	if h.IsZero() {
		b.Clear(id, name)
		return
	}
	b.table(id)[name] = []Handler{h}
}

// Hook appends h to the chain for name.
func (b *Bindings) Hook(id widget.ID, name string, h Handler) {
	if h.IsZero() {
		return
	}
	t := b.table(id)
	t[name] = append(t[name], h)
}

// Prepend inserts h at the front of the chain for name.
func (b *Bindings) Prepend(id widget.ID, name string, h Handler) {
	if h.IsZero() {
		return
	}
	t := b.table(id)
	t[name] = append([]Handler{h}, t[name]...)
}

// Get returns the first handler bound to name.
func (b *Bindings) Get(id widget.ID, name string) (Handler, bool) {
	chain := b.chains[id][name]
	if len(chain) == 0 {
		return Handler{}, false
	}
	return chain[0], true
}

// Chain returns a copy of the chain bound to name.
func (b *Bindings) Chain(id widget.ID, name string) []Handler {
	return slices.Clone(b.chains[id][name])
}

// Has reports whether any handler is bound to name.
func (b *Bindings) Has(id widget.ID, name string) bool {
	return len(b.chains[id][name]) > 0
}

// Names returns the handler names bound on id, sorted.
func (b *Bindings) Names(id widget.ID) []string {
	return slices.Sorted(maps.Keys(b.chains[id]))
}

// Clear removes the chain for name.
func (b *Bindings) Clear(id widget.ID, name string) {
	t, ok := b.chains[id]
	if !ok {
		return
	}
	delete(t, name)
	if len(t) == 0 {
		delete(b.chains, id)
	}
}

// RemoveAll drops every binding of id.
func (b *Bindings) RemoveAll(id widget.ID) {
	delete(b.chains, id)
}
