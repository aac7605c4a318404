// Package layout computes screen rectangles, paint order and hit testing for
// the widgets of a registry.
//
// Layout is derived on demand: nothing is cached between calls, so a rect is
// always consistent with the registry at the moment it is requested.
package layout

import (
	"math"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/widget"
)

// Warning reasons reported while resolving.
const (
	ReasonUnknownWidget  = "unknown widget"
	ReasonDanglingAnchor = "dangling anchor target"
	ReasonAnchorCycle    = "anchor cycle"
	ReasonNonFinite      = "non-finite geometry"
)

// Resolve computes the rect of id without side effects. Degraded inputs are
// resolved with a fallback and described in the returned warnings.
func Resolve(reg *widget.Registry, id widget.ID, screen Screen) (Rect, []*uierrors.LayoutWarning) {
	r := newResolver(reg, screen)
	rect := r.rect(id)
	return rect, r.warnings
}

// RectOf computes the rect of id and reports any warnings to the error
// channel.
func RectOf(reg *widget.Registry, id widget.ID, screen Screen) Rect {
	rect, warnings := Resolve(reg, id, screen)
	for _, w := range warnings {
		uierrors.Warn("layout.RectOf", w)
	}
	return rect
}

// ResolveAll computes the rect of every live widget in one pass.
func ResolveAll(reg *widget.Registry, screen Screen) (map[widget.ID]Rect, []*uierrors.LayoutWarning) {
	r := newResolver(reg, screen)
	out := make(map[widget.ID]Rect, reg.Len())
	for _, id := range reg.IDs() {
		out[id] = r.rect(id)
	}
	return out, r.warnings
}

type warningKey struct {
	id, target widget.ID
	reason     string
}

type resolver struct {
	reg    *widget.Registry
	screen Screen
	stack  map[widget.ID]bool
	// done holds rects that did not depend on the resolution stack.
	done map[widget.ID]Rect
	// cycles counts cut cycles; a rect computed while it grew is
	// provisional and stays out of done.
	cycles   int
	seen     map[warningKey]bool
	warnings []*uierrors.LayoutWarning
}

func newResolver(reg *widget.Registry, screen Screen) *resolver {
	return &resolver{
		reg:    reg,
		screen: screen,
		stack:  make(map[widget.ID]bool),
		done:   make(map[widget.ID]Rect),
		seen:   make(map[warningKey]bool),
	}
}

func (r *resolver) warn(id, target widget.ID, reason string) {
	if reason == ReasonAnchorCycle {
		r.cycles++
	}
	key := warningKey{id, target, reason}
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.warnings = append(r.warnings, &uierrors.LayoutWarning{
		Widget: uint64(id),
		Target: uint64(target),
		Reason: reason,
	})
}

func (r *resolver) rect(id widget.ID) Rect {
	if rect, ok := r.done[id]; ok {
		return rect
	}
	w, ok := r.reg.Get(id)
	if !ok {
		r.warn(id, widget.None, ReasonUnknownWidget)
		return Rect{}
	}
	cycles := r.cycles
	r.stack[id] = true
	rect := r.compute(w)
	delete(r.stack, id)
	if r.cycles == cycles {
		r.done[id] = rect
	}
	return rect
}

func (r *resolver) parentRect(w *widget.Widget) Rect {
	if w.Parent == widget.None || !r.reg.Exists(w.Parent) {
		return r.screen.Rect()
	}
	if r.stack[w.Parent] {
		r.warn(w.ID, w.Parent, ReasonAnchorCycle)
		return Rect{}
	}
	return r.rect(w.Parent)
}

// reference returns the rect an anchor measures from.
func (r *resolver) reference(w *widget.Widget, a widget.Anchor, parent Rect) Rect {
	switch {
	case a.Relative == widget.None:
		return parent
	case !r.reg.Exists(a.Relative):
		r.warn(w.ID, a.Relative, ReasonDanglingAnchor)
		return parent
	case r.stack[a.Relative]:
		r.warn(w.ID, a.Relative, ReasonAnchorCycle)
		return Rect{}
	default:
		return r.rect(a.Relative)
	}
}

func intrinsicSize(w *widget.Widget) (width, height float64) {
	if w.Kind == widget.KindFontString && (!w.WidthSet || !w.HeightSet) {
		width, height = widget.MeasureText(w.Text)
	}
	if w.WidthSet {
		width = w.Width
	}
	if w.HeightSet {
		height = w.Height
	}
	return width, height
}

// edge classification of an anchor point along one axis.
const (
	edgeMin = iota
	edgeCenter
	edgeMax
)

func classify(frac float64) int {
	switch {
	case frac == 0:
		return edgeMin
	case frac == 1:
		return edgeMax
	default:
		return edgeCenter
	}
}

// axis resolves one dimension. frac is the widget's own point fraction along
// the axis and ref the resolved reference coordinate, per anchor in
// declaration order.
func axis(fracs, refs []float64, size float64, explicit bool) (origin, extent float64) {
	minIdx, maxIdx := -1, -1
	for i, f := range fracs {
		switch classify(f) {
		case edgeMin:
			if minIdx < 0 {
				minIdx = i
			}
		case edgeMax:
			if maxIdx < 0 {
				maxIdx = i
			}
		}
	}
	if minIdx >= 0 && maxIdx >= 0 && !explicit {
		lo, hi := refs[minIdx], refs[maxIdx]
		return math.Min(lo, hi), math.Abs(hi - lo)
	}
	return refs[0] - fracs[0]*size, size
}

func (r *resolver) compute(w *widget.Widget) Rect {
	parent := r.parentRect(w)
	width, height := intrinsicSize(w)

	if len(w.Anchors) == 0 {
		return r.sanitize(w, parent, Rect{X: parent.X, Y: parent.Y, Width: width, Height: height})
	}

	n := len(w.Anchors)
	fx, fy := make([]float64, n), make([]float64, n)
	px, py := make([]float64, n), make([]float64, n)
	for i, a := range w.Anchors {
		ref := r.reference(w, a, parent)
		rx, ry := ref.Point(a.RelativePoint)
		// Offsets are Y-up.
		px[i], py[i] = rx+a.X, ry-a.Y
		fx[i], fy[i] = a.Point.Fractions()
	}

	var rect Rect
	rect.X, rect.Width = axis(fx, px, width, w.WidthSet)
	rect.Y, rect.Height = axis(fy, py, height, w.HeightSet)
	return r.sanitize(w, parent, rect)
}

func (r *resolver) sanitize(w *widget.Widget, parent, rect Rect) Rect {
	if rect.finite() {
		return rect
	}
	r.warn(w.ID, widget.None, ReasonNonFinite)
	if !parent.finite() {
		return Rect{}
	}
	return Rect{X: parent.X, Y: parent.Y}
}
