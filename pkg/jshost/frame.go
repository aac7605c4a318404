package jshost

import (
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"

	"github.com/addonsim/uisim/pkg/widget"
)

// Frame returns the proxy object for id, creating it on first use. Returns
// nil for widgets that no longer exist.
func (h *Host) Frame(id widget.ID) *goja.Object {
	if !h.Registry.Exists(id) {
		delete(h.frames, id)
		return nil
	}
	if f, ok := h.frames[id]; ok {
		return f
	}
	f := h.newFrame(id)
	h.frames[id] = f
	return f
}

func (h *Host) frameValue(id widget.ID) goja.Value {
	if f := h.Frame(id); f != nil {
		return f
	}
	return goja.Null()
}

// widgetOf maps a proxy back to its id.
func (h *Host) widgetOf(v goja.Value) (widget.ID, bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return widget.None, false
	}
	obj := v.ToObject(h.vm)
	raw := obj.Get("__id")
	if raw == nil || goja.IsUndefined(raw) {
		return widget.None, false
	}
	id := widget.ID(raw.ToInteger())
	return id, h.Registry.Exists(id)
}

func (h *Host) throw(format string, args ...any) {
	panic(h.vm.NewTypeError(fmt.Sprintf(format, args...)))
}

// need returns the attached session or throws on behalf of method.
func (h *Host) need(method string) Session {
	if h.session == nil {
		h.throw("%s: no session attached", method)
	}
	return h.session
}

func (h *Host) newFrame(id widget.ID) *goja.Object {
	vm := h.vm
	f := vm.NewObject()
	_ = f.DefineDataProperty("__id", vm.ToValue(int64(id)), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)

	get := func() *widget.Widget {
		w, ok := h.Registry.Get(id)
		if !ok {
			h.throw("frame %d was destroyed", id)
		}
		return w
	}

	set := func(name string, fn func(goja.FunctionCall) goja.Value) {
		_ = f.Set(name, fn)
	}

	set("GetName", func(goja.FunctionCall) goja.Value {
		w := get()
		if !h.Registry.OwnsName(id) {
			return goja.Null()
		}
		return vm.ToValue(w.Name)
	})
	set("GetObjectType", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(get().Kind.String())
	})
	set("GetParent", func(goja.FunctionCall) goja.Value {
		return h.frameValue(get().Parent)
	})
	set("GetChild", func(call goja.FunctionCall) goja.Value {
		child, ok := h.Registry.ChildByKey(id, call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return h.frameValue(child)
	})
	set("GetChildren", func(goja.FunctionCall) goja.Value {
		var out []any
		for _, cid := range get().Children {
			if c := h.Frame(cid); c != nil {
				out = append(out, c)
			}
		}
		return vm.NewArray(out...)
	})
	set("Show", func(goja.FunctionCall) goja.Value {
		if h.session != nil {
			h.session.Show(id)
		} else {
			h.Registry.SetShown(id, true)
		}
		return goja.Undefined()
	})
	set("Hide", func(goja.FunctionCall) goja.Value {
		if h.session != nil {
			h.session.Hide(id)
		} else {
			h.Registry.SetShown(id, false)
		}
		return goja.Undefined()
	})
	set("IsShown", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(h.Registry.IsShown(id))
	})
	set("IsVisible", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(h.Registry.IsVisible(id))
	})
	set("SetSize", func(call goja.FunctionCall) goja.Value {
		width, height := call.Argument(0).ToFloat(), call.Argument(1).ToFloat()
		if h.session != nil {
			h.session.SetSize(id, width, height)
		} else {
			h.Registry.SetSize(id, width, height)
		}
		return goja.Undefined()
	})
	set("GetWidth", func(goja.FunctionCall) goja.Value {
		if w := get(); w.WidthSet {
			return vm.ToValue(w.Width)
		}
		return vm.ToValue(h.rect(id).Width)
	})
	set("GetHeight", func(goja.FunctionCall) goja.Value {
		if w := get(); w.HeightSet {
			return vm.ToValue(w.Height)
		}
		return vm.ToValue(h.rect(id).Height)
	})
	set("SetText", func(call goja.FunctionCall) goja.Value {
		get().Text = call.Argument(0).String()
		return goja.Undefined()
	})
	set("GetText", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(get().Text)
	})
	set("SetAttribute", func(call goja.FunctionCall) goja.Value {
		h.Registry.SetAttribute(id, call.Argument(0).String(), call.Argument(1).Export())
		return goja.Undefined()
	})
	set("GetAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := h.Registry.Attribute(id, call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	set("RegisterEvent", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(h.need("RegisterEvent").RegisterEvent(id, call.Argument(0).String()))
	})
	set("UnregisterEvent", func(call goja.FunctionCall) goja.Value {
		if h.session != nil {
			h.session.UnregisterEvent(id, call.Argument(0).String())
		}
		return goja.Undefined()
	})
	set("RegisterAllEvents", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(h.need("RegisterAllEvents").RegisterAllEvents(id))
	})
	set("UnregisterAllEvents", func(goja.FunctionCall) goja.Value {
		if h.session != nil {
			h.session.UnregisterAllEvents(id)
		}
		return goja.Undefined()
	})
	set("SetParent", func(call goja.FunctionCall) goja.Value {
		parent := h.relativeTo(call.Argument(0))
		if err := h.need("SetParent").SetParent(id, parent); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	set("Destroy", func(goja.FunctionCall) goja.Value {
		h.need("Destroy").Destroy(id)
		delete(h.frames, id)
		return goja.Undefined()
	})
	h.geometryMethods(id, get, set)
	h.scriptMethods(id, set)
	h.valueMethods(id, get, set)
	return f
}

// installGlobals defines the functions every script sees.
func (h *Host) installGlobals() {
	vm := h.vm
	_ = vm.Set("print", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		out := h.Out
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
		return goja.Undefined()
	})
	_ = vm.Set("GetFrame", func(call goja.FunctionCall) goja.Value {
		id, ok := h.Registry.ResolveName(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return h.frameValue(id)
	})
	_ = vm.Set("CreateFrame", func(call goja.FunctionCall) goja.Value {
		s := h.need("CreateFrame")
		kind := call.Argument(0).String()
		name := optString(call.Argument(1))
		parent, _ := h.widgetOf(call.Argument(2))
		templates := optString(call.Argument(3))
		id, err := s.CreateFrame(kind, name, parent, templates)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return h.frameValue(id)
	})
	_ = vm.Set("FireEvent", func(call goja.FunctionCall) goja.Value {
		s := h.need("FireEvent")
		var args []any
		if len(call.Arguments) > 1 {
			for _, a := range call.Arguments[1:] {
				args = append(args, a.Export())
			}
		}
		return vm.ToValue(s.FireEvent(call.Argument(0).String(), args...))
	})
}

func optString(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}
