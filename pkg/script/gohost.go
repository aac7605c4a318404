package script

import (
	"errors"
	"fmt"
	"slices"

	"github.com/addonsim/uisim/pkg/widget"
)

var (
	// ErrUnknownFunction is returned when a handler names a function the
	// host does not have.
	ErrUnknownFunction = errors.New("script: unknown function")

	// ErrUnknownMethod is returned when no behavior bundle of the widget
	// provides the method.
	ErrUnknownMethod = errors.New("script: unknown method")

	// ErrUnknownMixin is returned by a strict host for unregistered bundles.
	ErrUnknownMixin = errors.New("script: unknown mixin")
)

// GoHost is a Host whose code is Go functions. Function references and
// inline bodies are looked up in Functions; Method references are looked
// up in the behavior bundles attached to the widget, later bundles shadowing
// earlier ones.
type GoHost struct {
	Registry  *widget.Registry
	Functions map[string]NativeFunc
	Mixins    map[string]map[string]NativeFunc
	// Strict rejects behavior bundles that are not in Mixins.
	Strict bool
}

// NewGoHost creates an empty host bound to reg.
func NewGoHost(reg *widget.Registry) *GoHost {
	return &GoHost{
		Registry:  reg,
		Functions: make(map[string]NativeFunc),
		Mixins:    make(map[string]map[string]NativeFunc),
	}
}

// Define registers a function under name.
func (g *GoHost) Define(name string, fn NativeFunc) {
	g.Functions[name] = fn
}

// DefineMixin registers a behavior bundle.
func (g *GoHost) DefineMixin(name string, methods map[string]NativeFunc) {
	g.Mixins[name] = methods
}

// Call implements Host.
func (g *GoHost) Call(h Handler, self widget.ID, args []any) error {
	switch {
	case h.Native != nil:
		return h.Native(self, args)
	case h.Function != "":
		fn, ok := g.Functions[h.Function]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFunction, h.Function)
		}
		return fn(self, args)
	case h.Method != "":
		fn, ok := g.method(self, h.Method)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMethod, h.Method)
		}
		return fn(self, args)
	case h.Body != "":
		fn, ok := g.Functions[h.Body]
		if !ok {
			return fmt.Errorf("%w: body %q", ErrUnknownFunction, h.Body)
		}
		return fn(self, args)
	}
	return nil
}

func (g *GoHost) method(self widget.ID, name string) (NativeFunc, bool) {
	w, ok := g.Registry.Get(self)
	if !ok {
		return nil, false
	}
	mixins := slices.Clone(w.Mixins)
	for i := len(mixins) - 1; i >= 0; i-- {
		if fn, ok := g.Mixins[mixins[i]][name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// ApplyMixins implements MixinApplier. Methods are resolved lazily, so only
// strict hosts do any work here.
func (g *GoHost) ApplyMixins(_ widget.ID, mixins []string) error {
	if !g.Strict {
		return nil
	}
	for _, m := range mixins {
		if _, ok := g.Mixins[m]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMixin, m)
		}
	}
	return nil
}
