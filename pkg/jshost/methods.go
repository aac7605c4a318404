package jshost

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/widget"
)

type (
	methodSetter func(name string, fn func(goja.FunctionCall) goja.Value)
	widgetGetter func() *widget.Widget
)

// rect resolves the screen rect of id against the session screen, or the
// default screen when detached.
func (h *Host) rect(id widget.ID) layout.Rect {
	if h.session != nil {
		return h.session.Rect(id)
	}
	return layout.RectOf(h.Registry, id, layout.DefaultScreen)
}

func (h *Host) screenHeight() float64 {
	if h.session != nil {
		return h.session.Screen().Height
	}
	return layout.DefaultScreen.Height
}

// relativeTo accepts a proxy or a global name. Nil and undefined mean None.
func (h *Host) relativeTo(v goja.Value) widget.ID {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return widget.None
	}
	if name, ok := v.Export().(string); ok {
		id, ok := h.Registry.ResolveName(name)
		if !ok {
			h.throw("couldn't find region named %q", name)
		}
		return id
	}
	id, ok := h.widgetOf(v)
	if !ok {
		h.throw("not a frame: %s", v)
	}
	return id
}

func isNumber(v goja.Value) bool {
	if v == nil {
		return false
	}
	switch v.Export().(type) {
	case int64, float64:
		return true
	}
	return false
}

// pointArg parses an optional anchor point name.
func pointArg(v goja.Value) (widget.AnchorPoint, bool) {
	if v == nil {
		return widget.Center, false
	}
	s, ok := v.Export().(string)
	if !ok {
		return widget.Center, false
	}
	return widget.ParsePoint(s)
}

// parseSetPoint accepts (point), (point, x, y), (point, relativeTo),
// (point, relativeTo, relativePoint) and the full
// (point, relativeTo, relativePoint, x, y).
func (h *Host) parseSetPoint(args []goja.Value) widget.Anchor {
	var a widget.Anchor
	if len(args) > 0 {
		a.Point, _ = pointArg(args[0])
	}
	a.RelativePoint = a.Point
	arg := func(i int) goja.Value {
		if i < len(args) {
			return args[i]
		}
		return goja.Undefined()
	}
	switch n := len(args); {
	case n <= 1:
	case n <= 3 && isNumber(arg(1)) && isNumber(arg(2)):
		a.X, a.Y = arg(1).ToFloat(), arg(2).ToFloat()
	case n <= 3:
		a.Relative = h.relativeTo(arg(1))
		if p, ok := pointArg(arg(2)); ok {
			a.RelativePoint = p
		}
	default:
		a.Relative = h.relativeTo(arg(1))
		if p, ok := pointArg(arg(2)); ok {
			a.RelativePoint = p
		}
		if isNumber(arg(3)) {
			a.X = arg(3).ToFloat()
		}
		if isNumber(arg(4)) {
			a.Y = arg(4).ToFloat()
		}
	}
	return a
}

// geometryMethods installs anchoring, stacking and rect queries. Edges are
// reported with a bottom-left origin.
func (h *Host) geometryMethods(id widget.ID, get widgetGetter, set methodSetter) {
	vm := h.vm
	set("SetPoint", func(call goja.FunctionCall) goja.Value {
		a := h.parseSetPoint(call.Arguments)
		if err := h.need("SetPoint").SetPoint(id, a); err != nil {
			panic(vm.NewGoError(fmt.Errorf("SetPoint: %w", err)))
		}
		return goja.Undefined()
	})
	set("ClearAllPoints", func(goja.FunctionCall) goja.Value {
		h.need("ClearAllPoints").ClearAllPoints(id)
		return goja.Undefined()
	})
	set("SetAllPoints", func(call goja.FunctionCall) goja.Value {
		rel := widget.None
		v := call.Argument(0)
		if b, ok := v.Export().(bool); ok {
			if !b {
				return goja.Undefined()
			}
		} else {
			rel = h.relativeTo(v)
		}
		if err := h.need("SetAllPoints").SetAllPoints(id, rel); err != nil {
			panic(vm.NewGoError(fmt.Errorf("SetAllPoints: %w", err)))
		}
		return goja.Undefined()
	})
	set("GetNumPoints", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(len(get().Anchors))
	})
	set("SetFrameStrata", func(call goja.FunctionCall) goja.Value {
		h.need("SetFrameStrata").SetStrata(id, call.Argument(0).String())
		return goja.Undefined()
	})
	set("GetFrameStrata", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(get().Strata.String())
	})
	set("SetFrameLevel", func(call goja.FunctionCall) goja.Value {
		h.need("SetFrameLevel").SetLevel(id, int(call.Argument(0).ToInteger()))
		return goja.Undefined()
	})
	set("GetFrameLevel", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(get().Level)
	})

	edge := func(fn func(r layout.Rect, top float64) float64) func(goja.FunctionCall) goja.Value {
		return func(goja.FunctionCall) goja.Value {
			get()
			return vm.ToValue(fn(h.rect(id), h.screenHeight()))
		}
	}
	set("GetLeft", edge(func(r layout.Rect, _ float64) float64 { return r.X }))
	set("GetRight", edge(func(r layout.Rect, _ float64) float64 { return r.Right() }))
	set("GetTop", edge(func(r layout.Rect, top float64) float64 { return top - r.Y }))
	set("GetBottom", edge(func(r layout.Rect, top float64) float64 { return top - r.Bottom() }))
	set("GetRect", func(goja.FunctionCall) goja.Value {
		get()
		r := h.rect(id)
		return vm.NewArray(r.X, h.screenHeight()-r.Bottom(), r.Width, r.Height)
	})
}

// jsHandler wraps a script function so the kernel can bind it like any
// other handler. It is called with self followed by the handler args.
func (h *Host) jsHandler(fn goja.Callable) script.Handler {
	return script.Handler{
		Source: "js",
		Native: func(self widget.ID, args []any) error {
			frame := h.Frame(self)
			if frame == nil {
				return fmt.Errorf("jshost: widget %d: %w", self, widget.ErrNotFound)
			}
			return h.invoke(fn, frame, frame, args)
		},
	}
}

func (h *Host) handlerArg(method string, v goja.Value) script.Handler {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return script.Handler{}
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		h.throw("%s: handler is not a function", method)
	}
	return h.jsHandler(fn)
}

func (h *Host) scriptMethods(id widget.ID, set methodSetter) {
	vm := h.vm
	set("SetScript", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		hd := h.handlerArg("SetScript", call.Argument(1))
		return vm.ToValue(h.need("SetScript").SetScript(id, name, hd))
	})
	set("HookScript", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		hd := h.handlerArg("HookScript", call.Argument(1))
		if hd.IsZero() {
			return vm.ToValue(false)
		}
		return vm.ToValue(h.need("HookScript").HookScript(id, name, hd))
	})
}

// valueMethods installs the slider and status bar value model.
func (h *Host) valueMethods(id widget.ID, get widgetGetter, set methodSetter) {
	vm := h.vm
	set("SetMinMaxValues", func(call goja.FunctionCall) goja.Value {
		lo, hi := 0.0, 1.0
		if v := call.Argument(0); isNumber(v) {
			lo = v.ToFloat()
		}
		if v := call.Argument(1); isNumber(v) {
			hi = v.ToFloat()
		}
		h.need("SetMinMaxValues").SetMinMaxValues(id, lo, hi)
		return goja.Undefined()
	})
	set("GetMinMaxValues", func(goja.FunctionCall) goja.Value {
		r := get().Range
		if r == nil {
			return goja.Null()
		}
		return vm.NewArray(r.Min, r.Max)
	})
	set("SetValue", func(call goja.FunctionCall) goja.Value {
		h.need("SetValue").SetValue(id, call.Argument(0).ToFloat())
		return goja.Undefined()
	})
	set("GetValue", func(goja.FunctionCall) goja.Value {
		r := get().Range
		if r == nil {
			return goja.Null()
		}
		return vm.ToValue(r.Value)
	})
}
