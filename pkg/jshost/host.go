// Package jshost runs handler code written in JavaScript. Each widget gets a
// proxy object that scripts receive as self; behavior bundles are plain
// global objects whose properties are copied onto the proxy.
package jshost

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dop251/goja"

	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/widget"
)

// ErrNotCallable is returned when a handler resolves to a non-function value.
var ErrNotCallable = errors.New("jshost: not callable")

// Session is the subset of the kernel that frame proxies drive. Mutations
// go through it so that visibility handlers and event subscriptions behave
// as they do for Go callers.
type Session interface {
	CreateFrame(kind, name string, parent widget.ID, templates string) (widget.ID, error)
	Destroy(id widget.ID) bool
	SetParent(id, parent widget.ID) error
	Show(id widget.ID) bool
	Hide(id widget.ID) bool

	SetSize(id widget.ID, width, height float64) bool
	SetPoint(id widget.ID, a widget.Anchor) error
	ClearAllPoints(id widget.ID) bool
	SetAllPoints(id, rel widget.ID) error
	SetStrata(id widget.ID, strata string) bool
	SetLevel(id widget.ID, level int) bool
	Rect(id widget.ID) layout.Rect
	Screen() layout.Screen

	SetMinMaxValues(id widget.ID, lo, hi float64) bool
	SetValue(id widget.ID, v float64) bool

	SetScript(id widget.ID, name string, h script.Handler) bool
	HookScript(id widget.ID, name string, h script.Handler) bool
	RegisterEvent(id widget.ID, event string) bool
	UnregisterEvent(id widget.ID, event string)
	RegisterAllEvents(id widget.ID) bool
	UnregisterAllEvents(id widget.ID)
	FireEvent(event string, args ...any) int
}

// Host implements script.Host on a goja runtime. It is not safe for
// concurrent use.
type Host struct {
	Registry *widget.Registry
	// Out receives print output. Nil means os.Stdout.
	Out io.Writer

	vm       *goja.Runtime
	session  Session
	programs map[string]*goja.Program
	frames   map[widget.ID]*goja.Object
}

// New creates a runtime bound to reg with the global API installed.
func New(reg *widget.Registry) *Host {
	h := &Host{
		Registry: reg,
		vm:       goja.New(),
		programs: make(map[string]*goja.Program),
		frames:   make(map[widget.ID]*goja.Object),
	}
	h.installGlobals()
	return h
}

// Attach connects the host to a session. Until then frame proxies mutate
// the registry directly and event registration is unavailable.
func (h *Host) Attach(s Session) {
	h.session = s
}

// Runtime exposes the underlying interpreter.
func (h *Host) Runtime() *goja.Runtime {
	return h.vm
}

// Run executes a script file in the global scope.
func (h *Host) Run(name, src string) error {
	_, err := h.vm.RunScript(name, src)
	if err != nil {
		return fmt.Errorf("jshost: %s: %w", name, err)
	}
	return nil
}

// RunFile reads and executes path.
func (h *Host) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return h.Run(path, string(data))
}

// Call implements script.Host.
func (h *Host) Call(hd script.Handler, self widget.ID, args []any) error {
	if hd.Native != nil {
		return hd.Native(self, args)
	}
	frame := h.Frame(self)
	if frame == nil {
		return fmt.Errorf("jshost: widget %d: %w", self, widget.ErrNotFound)
	}

	var (
		fn   goja.Callable
		this goja.Value = goja.Undefined()
		err  error
	)
	switch {
	case hd.Function != "":
		fn, err = h.global(hd.Function)
		if err != nil {
			return err
		}
		return h.invoke(fn, this, frame, args)
	case hd.Method != "":
		fn, err = h.method(self, frame, hd.Method)
		if err != nil {
			return err
		}
		return h.invoke(fn, frame, nil, args)
	case hd.Body != "":
		fn, err = h.compile(hd)
		if err != nil {
			return err
		}
		return h.invoke(fn, this, frame, args)
	}
	return nil
}

// invoke calls fn with this, then self (when non-nil) followed by args.
func (h *Host) invoke(fn goja.Callable, this goja.Value, self *goja.Object, args []any) error {
	values := make([]goja.Value, 0, len(args)+1)
	if self != nil {
		values = append(values, self)
	}
	for _, a := range args {
		values = append(values, h.toValue(a))
	}
	_, err := fn(this, values...)
	return err
}

func (h *Host) toValue(v any) goja.Value {
	if id, ok := v.(widget.ID); ok {
		if f := h.Frame(id); f != nil {
			return f
		}
		return goja.Null()
	}
	return h.vm.ToValue(v)
}

func (h *Host) global(name string) (goja.Callable, error) {
	v := h.vm.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return nil, fmt.Errorf("%w: %s", script.ErrUnknownFunction, name)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, name)
	}
	return fn, nil
}

// method looks on the proxy first, then through the widget's bundles from
// last to first.
func (h *Host) method(self widget.ID, frame *goja.Object, name string) (goja.Callable, error) {
	if fn, ok := goja.AssertFunction(frame.Get(name)); ok {
		return fn, nil
	}
	if w, ok := h.Registry.Get(self); ok {
		mixins := append([]string(nil), w.Mixins...)
		for i := len(mixins) - 1; i >= 0; i-- {
			obj := h.mixin(mixins[i])
			if obj == nil {
				continue
			}
			if fn, ok := goja.AssertFunction(obj.Get(name)); ok {
				return fn, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", script.ErrUnknownMethod, name)
}

// compile turns an inline body into a function of (self, ...args). Compiled
// programs are cached by source text.
func (h *Host) compile(hd script.Handler) (goja.Callable, error) {
	prog, ok := h.programs[hd.Body]
	if !ok {
		src := "(function(self, ...args) {\n" + hd.Body + "\n})"
		name := hd.Source
		if name == "" {
			name = "inline"
		}
		var err error
		prog, err = goja.Compile(name, src, false)
		if err != nil {
			return nil, fmt.Errorf("jshost: compile %s: %w", name, err)
		}
		h.programs[hd.Body] = prog
	}
	v, err := h.vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, ErrNotCallable
	}
	return fn, nil
}

func (h *Host) mixin(name string) *goja.Object {
	v := h.vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.ToObject(h.vm)
}

// ApplyMixins implements script.MixinApplier by copying each bundle's
// properties onto the widget's proxy. Later bundles overwrite earlier ones.
func (h *Host) ApplyMixins(id widget.ID, mixins []string) error {
	frame := h.Frame(id)
	if frame == nil {
		return fmt.Errorf("jshost: widget %d: %w", id, widget.ErrNotFound)
	}
	var missing []string
	for _, m := range mixins {
		obj := h.mixin(m)
		if obj == nil {
			missing = append(missing, m)
			continue
		}
		for _, key := range obj.Keys() {
			if err := frame.Set(key, obj.Get(key)); err != nil {
				return err
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", script.ErrUnknownMixin, strings.Join(missing, ", "))
	}
	return nil
}

// Compile-time interface checks.
var (
	_ script.Host         = (*Host)(nil)
	_ script.MixinApplier = (*Host)(nil)
)
