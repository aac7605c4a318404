package jshost

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/addonsim/uisim/pkg/kernel"
	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/template"
	"github.com/addonsim/uisim/pkg/widget"
)

func newSession(t *testing.T) (*kernel.Kernel, *Host, *bytes.Buffer) {
	t.Helper()
	k, h := NewSession(kernel.Options{})
	var out bytes.Buffer
	h.Out = &out
	return k, h, &out
}

func TestBodyHandlerReceivesEventArgs(t *testing.T) {
	k, _, out := newSession(t)
	id, err := k.CreateFrame("Frame", "Watcher", k.UIParent(), "")
	if err != nil {
		t.Fatal(err)
	}
	k.SetScript(id, "OnEvent", script.Handler{Body: "print(self.GetName(), args[0], args[1]);"})
	k.RegisterEvent(id, "PING")

	if n := k.FireEvent("PING", 42); n != 1 {
		t.Fatalf("delivered = %d, want 1", n)
	}
	if got := out.String(); got != "Watcher PING 42\n" {
		t.Errorf("output = %q", got)
	}

	// Second dispatch reuses the compiled body.
	k.FireEvent("PING", 7)
	if !strings.HasSuffix(out.String(), "Watcher PING 7\n") {
		t.Errorf("output = %q", out.String())
	}
}

func TestFunctionHandler(t *testing.T) {
	k, h, _ := newSession(t)
	if err := h.Run("lib.js", "function onShow(self) { self.SetText('shown'); }"); err != nil {
		t.Fatal(err)
	}
	id, _ := k.CreateFrame("Frame", "Label", k.UIParent(), "")
	k.SetScript(id, "OnShow", script.Handler{Function: "onShow"})
	k.Hide(id)
	k.Show(id)
	if w, _ := k.Widgets.Get(id); w.Text != "shown" {
		t.Errorf("text = %q, want %q", w.Text, "shown")
	}
}

func TestMixinMethodsDuringConstruction(t *testing.T) {
	k, h, _ := newSession(t)
	src := `
var CounterMixin = {
	OnLoad: function() { this.SetAttribute("loaded", true); this.count = 0; },
	Bump: function(n) { this.count += n; this.SetAttribute("count", this.count); }
};`
	if err := h.Run("mixins.js", src); err != nil {
		t.Fatal(err)
	}
	err := k.Load([]*template.Definition{{
		Name:    "Counter",
		Kind:    widget.KindFrame,
		Mixins:  []string{"CounterMixin"},
		Scripts: []template.ScriptDef{{Handler: "OnLoad", Method: "OnLoad"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	id, ok := k.Lookup("Counter")
	if !ok {
		t.Fatal("Counter not created")
	}
	if v, _ := k.Widgets.Attribute(id, "loaded"); v != true {
		t.Errorf("loaded = %v, want true", v)
	}

	if err := h.Call(script.Handler{Method: "Bump"}, id, []any{3}); err != nil {
		t.Fatal(err)
	}
	if v, _ := k.Widgets.Attribute(id, "count"); v != int64(3) {
		t.Errorf("count = %#v, want 3", v)
	}
}

func TestCreateFrameFromScript(t *testing.T) {
	k, h, _ := newSession(t)
	src := `
var f = CreateFrame("Button", "JsButton", GetFrame("UIParent"));
f.SetSize(10, 20);
f.GetParent().GetName();`
	if err := h.Run("create.js", src); err != nil {
		t.Fatal(err)
	}
	id, ok := k.Lookup("JsButton")
	if !ok {
		t.Fatal("JsButton not registered")
	}
	w, _ := k.Widgets.Get(id)
	if w.Kind != widget.KindButton || w.Parent != k.UIParent() || w.Width != 10 || w.Height != 20 {
		t.Errorf("widget = %+v", w)
	}

	if err := h.Run("bad.js", `CreateFrame("Unit")`); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestCallErrors(t *testing.T) {
	k, h, _ := newSession(t)
	id, _ := k.CreateFrame("Frame", "", k.UIParent(), "")

	err := h.Call(script.Handler{Body: "throw new Error('boom');"}, id, nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("throw: err = %v", err)
	}
	if err := h.Call(script.Handler{Function: "missing"}, id, nil); !errors.Is(err, script.ErrUnknownFunction) {
		t.Errorf("missing function: err = %v", err)
	}
	if err := h.Call(script.Handler{Method: "missing"}, id, nil); !errors.Is(err, script.ErrUnknownMethod) {
		t.Errorf("missing method: err = %v", err)
	}
	if err := h.Call(script.Handler{Body: "this is not js"}, id, nil); err == nil {
		t.Error("syntax error accepted")
	}
	if err := h.ApplyMixins(id, []string{"NoSuchMixin"}); !errors.Is(err, script.ErrUnknownMixin) {
		t.Errorf("missing mixin: err = %v", err)
	}

	called := false
	native := script.Handler{Native: func(self widget.ID, _ []any) error {
		called = self == id
		return nil
	}}
	if err := h.Call(native, id, nil); err != nil || !called {
		t.Errorf("native: err = %v, called = %v", err, called)
	}

	k.Destroy(id)
	if err := h.Call(script.Handler{Body: "print(1);"}, id, nil); !errors.Is(err, widget.ErrNotFound) {
		t.Errorf("destroyed: err = %v", err)
	}
}

func TestFrameProxyIsStable(t *testing.T) {
	k, h, _ := newSession(t)
	id, _ := k.CreateFrame("Frame", "Stable", k.UIParent(), "")
	if h.Frame(id) != h.Frame(id) {
		t.Error("proxy recreated")
	}
	if err := h.Run("check.js", `if (GetFrame("Stable") !== GetFrame("Stable")) throw new Error("unstable");`); err != nil {
		t.Error(err)
	}
}

func runJS(t *testing.T, h *Host, src string) {
	t.Helper()
	if err := h.Run(t.Name()+".js", src); err != nil {
		t.Fatal(err)
	}
}

func TestSetPointForms(t *testing.T) {
	k, h, out := newSession(t)
	runJS(t, h, `
var ui = GetFrame("UIParent");
var p = CreateFrame("Frame", "Panel", ui);
p.SetSize(200, 100);
p.SetPoint("TOPLEFT", 10, -20);
var below = CreateFrame("Frame", "Below", ui);
below.SetSize(50, 50);
below.SetPoint("TOP", "Panel", "BOTTOM", 0, -5);
var side = CreateFrame("Frame", "Side", ui);
side.SetSize(2, 2);
side.SetPoint("LEFT", p, "RIGHT");
var centered = CreateFrame("Frame", "Centered", ui);
centered.SetSize(4, 4);
centered.SetPoint("CENTER");
print(p.GetLeft(), p.GetRight(), p.GetTop(), p.GetBottom());
print(p.GetRect().join(","));
print(p.GetNumPoints(), side.GetNumPoints());`)

	want := "10 210 748 648\n10,648,200,100\n1 1\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	rects := map[string]layout.Rect{
		"Panel":    {X: 10, Y: 20, Width: 200, Height: 100},
		"Below":    {X: 85, Y: 125, Width: 50, Height: 50},
		"Side":     {X: 210, Y: 69, Width: 2, Height: 2},
		"Centered": {X: 510, Y: 382, Width: 4, Height: 4},
	}
	for name, want := range rects {
		id, _ := k.Lookup(name)
		if got := k.Rect(id); got != want {
			t.Errorf("%s rect = %+v, want %+v", name, got, want)
		}
	}
	side, _ := k.Lookup("Side")
	panel, _ := k.Lookup("Panel")
	if w, _ := k.Widgets.Get(side); w.Anchors[0].Relative != panel || w.Anchors[0].RelativePoint != widget.Right {
		t.Errorf("side anchor = %+v", w.Anchors[0])
	}

	if err := h.Run("unknown.js", `GetFrame("Below").SetPoint("TOP", "NoSuchFrame")`); err == nil {
		t.Error("unknown relative name accepted")
	}
}

func TestAnchorClearingAndFill(t *testing.T) {
	k, h, out := newSession(t)
	runJS(t, h, `
var p = CreateFrame("Frame", "Holder", GetFrame("UIParent"));
p.SetSize(300, 120);
p.SetPoint("TOPLEFT", 0, 0);
var fill = CreateFrame("Frame", "Fill", p);
fill.SetAllPoints();
var other = CreateFrame("Frame", "Other", GetFrame("UIParent"));
other.SetAllPoints(false);
var copy = CreateFrame("Frame", "Copy", GetFrame("UIParent"));
copy.SetAllPoints("Holder");
print(fill.GetWidth(), fill.GetHeight(), other.GetNumPoints(), copy.GetWidth());
fill.ClearAllPoints();
print(fill.GetNumPoints());`)
	if got, want := out.String(), "300 120 0 300\n0\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	fill, _ := k.Lookup("Fill")
	if w, _ := k.Widgets.Get(fill); w.WidthSet {
		t.Error("GetWidth stored an explicit size")
	}

	// Fill anchors to Holder through its parent, so the reverse anchor cycles.
	runJS(t, h, `GetFrame("Fill").SetAllPoints();`)
	if err := h.Run("cycle.js", `GetFrame("Holder").SetPoint("TOP", "Fill", "BOTTOM")`); err == nil {
		t.Error("anchor cycle accepted")
	}
}

func TestGetSizeDetached(t *testing.T) {
	reg := widget.NewRegistry()
	root := reg.Create(widget.KindFrame)
	if err := reg.SetAllPoints(root, widget.None); err != nil {
		t.Fatal(err)
	}
	h := New(reg)
	var out bytes.Buffer
	h.Out = &out
	_ = h.Runtime().Set("root", h.Frame(root))
	runJS(t, h, `print(root.GetWidth(), root.GetHeight(), root.GetTop());`)
	if got, want := out.String(), "1024 768 768\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if err := h.Run("detached.js", `root.SetPoint("CENTER")`); err == nil {
		t.Error("SetPoint without a session succeeded")
	}
}

func TestStrataAndLevel(t *testing.T) {
	k, h, out := newSession(t)
	runJS(t, h, `
var f = CreateFrame("Frame", "Popup", GetFrame("UIParent"));
f.SetFrameStrata("DIALOG");
f.SetFrameLevel(7);
f.SetFrameStrata("NOT_A_STRATA");
print(f.GetFrameStrata(), f.GetFrameLevel());`)
	if got, want := out.String(), "DIALOG 7\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	id, _ := k.Lookup("Popup")
	if w, _ := k.Widgets.Get(id); w.Strata != widget.StrataDialog || w.Level != 7 {
		t.Errorf("widget strata = %v level = %d", w.Strata, w.Level)
	}
}

func TestSetParentAndDestroy(t *testing.T) {
	k, h, out := newSession(t)
	runJS(t, h, `
var a = CreateFrame("Frame", "A", GetFrame("UIParent"));
var b = CreateFrame("Frame", "B", GetFrame("UIParent"));
b.SetParent("A");
print(b.GetParent().GetName());
b.SetParent(GetFrame("UIParent"));
print(b.GetParent().GetName());
b.SetParent(null);
print(b.GetParent());`)
	if got, want := out.String(), "A\nUIParent\nnull\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if err := h.Run("cycle.js", `GetFrame("UIParent").SetParent("A")`); err == nil {
		t.Error("parent cycle accepted")
	}

	runJS(t, h, `var doomed = GetFrame("A"); doomed.Destroy();`)
	if _, ok := k.Lookup("A"); ok {
		t.Error("A still registered")
	}
	if err := h.Run("stale.js", `doomed.GetName()`); err == nil {
		t.Error("destroyed proxy still usable")
	}
	runJS(t, h, `if (GetFrame("A") !== null) throw new Error("A resolves");`)
}

func TestSetScriptAndHookScript(t *testing.T) {
	k, h, out := newSession(t)
	runJS(t, h, `
var f = CreateFrame("Frame", "Hooky", GetFrame("UIParent"));
f.SetScript("OnShow", function(self) { print("show", self.GetName()); });
f.HookScript("OnShow", function(self) { print("hooked"); });
f.Hide();
f.Show();
f.SetScript("OnShow", null);
f.Hide();
f.Show();`)
	if got, want := out.String(), "show Hooky\nhooked\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	id, _ := k.Lookup("Hooky")
	if _, ok := k.GetScript(id, "OnShow"); ok {
		t.Error("SetScript(null) left a handler")
	}
	if err := h.Run("bad.js", `GetFrame("Hooky").SetScript("OnShow", 42)`); err == nil {
		t.Error("non-function handler accepted")
	}
}

func TestAllEventsFromScript(t *testing.T) {
	k, h, out := newSession(t)
	runJS(t, h, `
var f = CreateFrame("Frame", "Spy", GetFrame("UIParent"));
f.SetScript("OnEvent", function(self, event, arg) { print(event, arg); });
f.RegisterAllEvents();
FireEvent("BAG_UPDATE", 3);
f.UnregisterAllEvents();
print(FireEvent("BAG_UPDATE", 4));`)
	if got, want := out.String(), "BAG_UPDATE 3\n0\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	id, _ := k.Lookup("Spy")
	if w, _ := k.Widgets.Get(id); w.AllEvents {
		t.Error("all-events flag survived UnregisterAllEvents")
	}
}

func TestValueMethods(t *testing.T) {
	_, h, out := newSession(t)
	runJS(t, h, `
var s = CreateFrame("Slider", "Vol", GetFrame("UIParent"));
s.SetScript("OnValueChanged", function(self, v) { print("changed", v); });
s.SetMinMaxValues(0, 10);
s.SetValue(4);
s.SetValue(4);
s.SetValue(40);
print(s.GetValue(), s.GetMinMaxValues().join(","));
print(GetFrame("UIParent").GetValue());`)
	if got, want := out.String(), "changed 4\nchanged 10\n10 0,10\nnull\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
