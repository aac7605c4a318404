// Package kernel is the entry point a script host drives: it owns one UI
// session and exposes the operations addon code performs on frames.
//
// A Kernel is not safe for concurrent use. Handlers invoked by the kernel
// may call back into it.
package kernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/addonsim/uisim/pkg/construct"
	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/event"
	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/template"
	"github.com/addonsim/uisim/pkg/widget"
)

// RootName is the global name of the frame pinned to the screen.
const RootName = "UIParent"

// DisplaySizeChanged is dispatched by SetScreen.
const DisplaySizeChanged = "DISPLAY_SIZE_CHANGED"

// ErrUnknownKind is returned by CreateFrame for unrecognized type names.
var ErrUnknownKind = errors.New("kernel: unknown widget kind")

// Options configures a Kernel.
type Options struct {
	// Screen is the root coordinate space; zero uses layout.DefaultScreen.
	Screen layout.Screen
	// Host runs handler code; nil installs an empty script.GoHost.
	Host script.Host
	// NewHost builds the host from the session's registry. It is used when
	// Host is nil.
	NewHost func(reg *widget.Registry) script.Host
	// OnConstructed is forwarded to the construction pipeline.
	OnConstructed func(root widget.ID)
}

// Kernel wires the registry, template resolver, bindings, dispatcher and
// construction pipeline of one session.
type Kernel struct {
	Widgets   *widget.Registry
	Templates *template.Registry
	Bindings  *script.Bindings
	Runner    *script.Runner
	Events    *event.Dispatcher
	Pipeline  *construct.Pipeline

	host     script.Host
	screen   layout.Screen
	uiParent widget.ID
}

// New creates a session with its root frame.
func New(opts Options) *Kernel {
	screen := opts.Screen
	if screen.Width <= 0 || screen.Height <= 0 {
		screen = layout.DefaultScreen
	}
	reg := widget.NewRegistry()
	host := opts.Host
	switch {
	case host != nil:
	case opts.NewHost != nil:
		host = opts.NewHost(reg)
	default:
		host = script.NewGoHost(reg)
	}
	bindings := script.NewBindings()
	runner := &script.Runner{Registry: reg, Bindings: bindings, Host: host}

	k := &Kernel{
		Widgets:   reg,
		Templates: template.NewRegistry(),
		Bindings:  bindings,
		Runner:    runner,
		Events:    event.NewDispatcher(reg, runner),
		Pipeline: &construct.Pipeline{
			Registry:      reg,
			Bindings:      bindings,
			Runner:        runner,
			Host:          host,
			OnConstructed: opts.OnConstructed,
		},
		host:   host,
		screen: screen,
	}
	k.uiParent = reg.Create(widget.KindFrame)
	reg.RegisterName(k.uiParent, RootName)
	_ = reg.SetAllPoints(k.uiParent, widget.None)
	return k
}

// Host returns the script host handlers run on.
func (k *Kernel) Host() script.Host {
	return k.host
}

// UIParent returns the root frame.
func (k *Kernel) UIParent() widget.ID {
	return k.uiParent
}

// Lookup resolves a global name.
func (k *Kernel) Lookup(name string) (widget.ID, bool) {
	return k.Widgets.ResolveName(name)
}

// CreateFrame creates a widget of the named kind, optionally named, under
// parent, from a comma separated list of templates.
func (k *Kernel) CreateFrame(kind, name string, parent widget.ID, templates string) (widget.ID, error) {
	wk, ok := widget.ParseKind(kind)
	if !ok {
		return widget.None, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	plan, err := k.Templates.ExpandList(wk, splitTemplates(templates)...)
	if err != nil {
		k.report("kernel.CreateFrame", uierrors.KindTemplate, widget.None, err)
		return widget.None, err
	}
	return k.Pipeline.Construct(plan, construct.Request{Name: name, Parent: parent, Kind: wk})
}

func splitTemplates(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load registers virtual definitions as templates and instantiates the
// others in document order. Instances are parented to the frame named by
// their Parent field, or to UIParent. Every failure is reported; the joined
// failures are returned once all definitions were processed.
func (k *Kernel) Load(defs []*template.Definition) error {
	var errs []error
	for _, def := range defs {
		if err := k.load(def); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (k *Kernel) load(def *template.Definition) error {
	if def.Virtual {
		if err := k.Templates.Register(def); err != nil {
			err = fmt.Errorf("template %q: %w", def.Name, err)
			k.report("kernel.Load", uierrors.KindTemplate, widget.None, err)
			return err
		}
		return nil
	}
	plan, err := k.Templates.ExpandDefinition(def)
	if err != nil {
		err = fmt.Errorf("frame %q: %w", def.Name, err)
		k.report("kernel.Load", uierrors.KindTemplate, widget.None, err)
		return err
	}
	parent := k.uiParent
	if def.Parent != "" {
		id, ok := k.Widgets.ResolveName(def.Parent)
		if !ok {
			k.report("kernel.Load", uierrors.KindReference, widget.None,
				fmt.Errorf("frame %q: unknown parent %q; using %s", def.Name, def.Parent, RootName))
		} else {
			parent = id
		}
	}
	if def.Name == RootName {
		return nil
	}
	_, err = k.Pipeline.Construct(plan, construct.Request{Name: def.Name, Parent: parent, Kind: plan.Kind})
	return err
}

// Destroy removes id and every binding and subscription it holds. Its
// children are orphaned.
func (k *Kernel) Destroy(id widget.ID) bool {
	if !k.Widgets.Exists(id) {
		return false
	}
	k.Events.UnsubscribeAll(id)
	k.Bindings.RemoveAll(id)
	return k.Widgets.Remove(id)
}

// SetParent reparents id. Cycles are returned and not applied.
func (k *Kernel) SetParent(id, parent widget.ID) error {
	return k.Widgets.SetParent(id, parent)
}

// SetPoint adds or replaces an anchor on id.
func (k *Kernel) SetPoint(id widget.ID, a widget.Anchor) error {
	return k.Widgets.SetPoint(id, a)
}

// ClearAllPoints removes every anchor of id.
func (k *Kernel) ClearAllPoints(id widget.ID) bool {
	return k.Widgets.ClearAllPoints(id)
}

// SetAllPoints makes id fill rel, or its parent for None.
func (k *Kernel) SetAllPoints(id, rel widget.ID) error {
	return k.Widgets.SetAllPoints(id, rel)
}

// SetSize sets an explicit size.
func (k *Kernel) SetSize(id widget.ID, width, height float64) bool {
	return k.Widgets.SetSize(id, width, height)
}

// SetStrata sets an explicit stratum by name.
func (k *Kernel) SetStrata(id widget.ID, strata string) bool {
	s, ok := widget.ParseStrata(strata)
	if !ok {
		return false
	}
	return k.Widgets.SetStrata(id, s)
}

// SetLevel sets an explicit level.
func (k *Kernel) SetLevel(id widget.ID, level int) bool {
	return k.Widgets.SetLevel(id, level)
}

// Rect returns the screen rect of id, reporting layout warnings.
func (k *Kernel) Rect(id widget.ID) layout.Rect {
	return layout.RectOf(k.Widgets, id, k.screen)
}

// Order returns the paint order snapshot.
func (k *Kernel) Order() []widget.ID {
	return layout.Order(k.Widgets)
}

// HitTest returns the topmost mouse-enabled widget at (x, y).
func (k *Kernel) HitTest(x, y float64) (widget.ID, bool) {
	return layout.HitTest(k.Widgets, k.screen, x, y)
}

// Screen returns the current screen size.
func (k *Kernel) Screen() layout.Screen {
	return k.screen
}

// SetScreen resizes the root coordinate space and dispatches
// DISPLAY_SIZE_CHANGED.
func (k *Kernel) SetScreen(s layout.Screen) {
	if s.Width <= 0 || s.Height <= 0 || s == k.screen {
		return
	}
	k.screen = s
	k.Events.Dispatch(DisplaySizeChanged)
}

func (k *Kernel) report(op string, kind uierrors.ErrorKind, id widget.ID, err error) {
	uierrors.Report(&uierrors.KernelError{Op: op, Kind: kind, Widget: uint64(id), Err: err})
}
