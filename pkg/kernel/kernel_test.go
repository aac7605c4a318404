package kernel

import (
	"errors"
	"slices"
	"testing"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/template"
	"github.com/addonsim/uisim/pkg/widget"
)

func newKernel(t *testing.T) (*Kernel, *script.GoHost) {
	t.Helper()
	k := New(Options{Screen: layout.Screen{Width: 800, Height: 600}})
	host, ok := k.Host().(*script.GoHost)
	if !ok {
		t.Fatalf("default host = %T", k.Host())
	}
	return k, host
}

func TestUIParentFillsScreen(t *testing.T) {
	k, _ := newKernel(t)
	id, ok := k.Lookup(RootName)
	if !ok || id != k.UIParent() {
		t.Fatal("UIParent not registered")
	}
	if got := k.Rect(id); got != (layout.Rect{Width: 800, Height: 600}) {
		t.Errorf("rect = %+v", got)
	}
	k.SetScreen(layout.Screen{Width: 1920, Height: 1080})
	if got := k.Rect(id); got.Width != 1920 || got.Height != 1080 {
		t.Errorf("rect after resize = %+v", got)
	}
}

func TestCreateFrameWithTemplates(t *testing.T) {
	k, _ := newKernel(t)
	w, h := 120.0, 40.0
	if err := k.Load([]*template.Definition{
		{Name: "SizedTemplate", Virtual: true, Size: &template.Size{Width: &w, Height: &h}},
		{Name: "TitledTemplate", Virtual: true, Children: []*template.Definition{{Key: "Title", Kind: widget.KindFontString}}},
	}); err != nil {
		t.Fatal(err)
	}
	id, err := k.CreateFrame("Button", "MyButton", k.UIParent(), "SizedTemplate, TitledTemplate")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := k.Widgets.Get(id)
	if got.Kind != widget.KindButton || got.Width != 120 || got.Parent != k.UIParent() {
		t.Errorf("widget = %+v", got)
	}
	if _, ok := k.Widgets.ChildByKey(id, "Title"); !ok {
		t.Error("Title child missing")
	}
	if _, err := k.CreateFrame("Unit", "", widget.None, ""); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v", err)
	}
	if _, err := k.CreateFrame("Frame", "", widget.None, "Missing"); !errors.Is(err, template.ErrUnknownTemplate) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadInstancesAndParents(t *testing.T) {
	k, _ := newKernel(t)
	err := k.Load([]*template.Definition{
		{Name: "Panel"},
		{Name: "PanelChild", Parent: "Panel"},
		{Name: "Stray", Parent: "Nowhere"},
	})
	if err != nil {
		t.Fatal(err)
	}
	panel, _ := k.Lookup("Panel")
	child, _ := k.Lookup("PanelChild")
	stray, _ := k.Lookup("Stray")
	cw, _ := k.Widgets.Get(child)
	sw, _ := k.Widgets.Get(stray)
	if cw.Parent != panel {
		t.Errorf("child parent = %d, want %d", cw.Parent, panel)
	}
	if sw.Parent != k.UIParent() {
		t.Errorf("stray parent = %d, want UIParent", sw.Parent)
	}
}

func TestLoadReportsTemplateErrors(t *testing.T) {
	rec := &uierrors.Recorder{}
	uierrors.SetHandler(rec)
	defer uierrors.SetHandler(nil)

	k, _ := newKernel(t)
	err := k.Load([]*template.Definition{
		{Name: "Loop", Virtual: true, Inherits: []string{"Loop"}},
		{Name: "Broken", Inherits: []string{"Missing"}},
		{Name: "Fine"},
	})
	if !errors.Is(err, template.ErrInheritanceCycle) || !errors.Is(err, template.ErrUnknownTemplate) {
		t.Errorf("err = %v", err)
	}
	if _, ok := k.Lookup("Fine"); !ok {
		t.Error("later definition not loaded")
	}
	if rec.Count(uierrors.KindTemplate) != 2 {
		t.Errorf("template reports = %d", rec.Count(uierrors.KindTemplate))
	}
}

func TestShowHideFiresOnChangedWidgets(t *testing.T) {
	k, host := newKernel(t)
	var log []string
	host.Define("show", func(self widget.ID, _ []any) error {
		w, _ := k.Widgets.Get(self)
		log = append(log, "show:"+w.Name)
		return nil
	})
	host.Define("hide", func(self widget.ID, _ []any) error {
		w, _ := k.Widgets.Get(self)
		log = append(log, "hide:"+w.Name)
		return nil
	})
	scripts := []template.ScriptDef{{Handler: "OnShow", Function: "show"}, {Handler: "OnHide", Function: "hide"}}
	hidden := true
	if err := k.Load([]*template.Definition{{
		Name:    "Outer",
		Hidden:  &hidden,
		Scripts: scripts,
		Children: []*template.Definition{
			{Name: "Inner", Scripts: scripts},
			{Name: "Closed", Scripts: scripts, Hidden: &hidden},
		},
	}}); err != nil {
		t.Fatal(err)
	}
	if len(log) != 0 {
		t.Fatalf("hidden construction fired %v", log)
	}
	outer, _ := k.Lookup("Outer")
	k.Show(outer)
	if !slices.Equal(log, []string{"show:Outer", "show:Inner"}) {
		t.Errorf("show log = %v", log)
	}
	log = nil
	k.Show(outer)
	if len(log) != 0 {
		t.Errorf("repeated Show fired %v", log)
	}
	k.Hide(outer)
	if !slices.Equal(log, []string{"hide:Outer", "hide:Inner"}) {
		t.Errorf("hide log = %v", log)
	}
}

func TestEventsThroughKernel(t *testing.T) {
	k, _ := newKernel(t)
	id, _ := k.CreateFrame("Frame", "Listener", k.UIParent(), "")
	var got []any
	k.SetScript(id, "OnEvent", script.Handler{Native: func(_ widget.ID, args []any) error {
		got = append(got, args...)
		return nil
	}})
	k.RegisterEvent(id, "PLAYER_LOGIN")
	k.FireEvent("PLAYER_LOGIN")
	k.UnregisterEvent(id, "PLAYER_LOGIN")
	k.FireEvent("PLAYER_LOGIN")
	if !slices.Equal(got, []any{"PLAYER_LOGIN"}) {
		t.Errorf("got %v", got)
	}
	k.RegisterAllEvents(id)
	k.SetScreen(layout.Screen{Width: 640, Height: 480})
	if got[len(got)-1] != DisplaySizeChanged {
		t.Errorf("last event = %v", got[len(got)-1])
	}
	k.Destroy(id)
	if k.FireEvent("ANY") != 0 {
		t.Error("destroyed widget still subscribed")
	}
	if _, ok := k.GetScript(id, "OnEvent"); ok {
		t.Error("bindings survived Destroy")
	}
}

func TestTickAgesMessagesAndFiresOnUpdate(t *testing.T) {
	k, _ := newKernel(t)
	mf, _ := k.CreateFrame("ScrollingMessageFrame", "Chat", k.UIParent(), "")
	k.AddMessage(mf, "hello")
	var elapsed float64
	k.HookScript(mf, "OnUpdate", script.Handler{Native: func(_ widget.ID, args []any) error {
		elapsed += args[0].(float64)
		return nil
	}})
	k.Tick(5)
	k.Tick(9)
	if elapsed != 14 {
		t.Errorf("elapsed = %v", elapsed)
	}
	w, _ := k.Widgets.Get(mf)
	if len(w.Messages.VisibleLines()) != 0 {
		t.Errorf("lines still visible after 14s")
	}
	k.Hide(mf)
	k.Tick(1)
	if elapsed != 14 {
		t.Error("hidden widget got OnUpdate")
	}
	if k.AddMessage(k.UIParent(), "x") {
		t.Error("AddMessage on a plain frame")
	}
}

func TestOrderAndHitTest(t *testing.T) {
	k, _ := newKernel(t)
	a, _ := k.CreateFrame("Button", "A", k.UIParent(), "")
	b, _ := k.CreateFrame("Button", "B", k.UIParent(), "")
	for _, id := range []widget.ID{a, b} {
		k.SetSize(id, 50, 50)
		k.Widgets.EnableMouse(id, true)
	}
	k.SetStrata(a, "DIALOG")
	if got, _ := k.HitTest(10, 10); got != a {
		t.Errorf("hit = %d, want %d", got, a)
	}
	order := k.Order()
	if order[len(order)-1] != a {
		t.Errorf("order = %v", order)
	}
	if k.SetStrata(a, "NOPE") {
		t.Error("unknown strata accepted")
	}
}

func TestNewHostOption(t *testing.T) {
	var got *widget.Registry
	k := New(Options{NewHost: func(reg *widget.Registry) script.Host {
		got = reg
		return script.NewGoHost(reg)
	}})
	if got != k.Widgets {
		t.Error("NewHost not called with the session registry")
	}
	if k.Screen() != layout.DefaultScreen {
		t.Errorf("screen = %+v, want default", k.Screen())
	}
}

func TestValueChangesFireOnValueChanged(t *testing.T) {
	k, _ := newKernel(t)
	s, _ := k.CreateFrame("Slider", "Volume", k.UIParent(), "")
	var got []any
	k.SetScript(s, "OnValueChanged", script.Handler{Native: func(_ widget.ID, args []any) error {
		got = append(got, args[0])
		return nil
	}})
	k.SetMinMaxValues(s, 0, 100)
	if len(got) != 0 {
		t.Fatalf("bounds that keep the value fired %v", got)
	}
	k.SetValue(s, 40)
	k.SetValue(s, 40)
	k.SetValue(s, 250)
	if !slices.Equal(got, []any{40.0, 100.0}) {
		t.Errorf("got %v", got)
	}
	got = nil
	k.SetMinMaxValues(s, 50, 10)
	if !slices.Equal(got, []any{50.0}) {
		t.Errorf("re-clamp fired %v", got)
	}
	r, ok := k.Value(s)
	if !ok || r.Min != 10 || r.Max != 50 || r.Value != 50 {
		t.Errorf("range = %+v, %v", r, ok)
	}
	if k.SetValue(k.UIParent(), 1) {
		t.Error("SetValue on a plain frame")
	}
	if _, ok := k.Value(k.UIParent()); ok {
		t.Error("plain frame has a value")
	}
}

func TestUnregisterAllEventsOnlyKeepsNamed(t *testing.T) {
	k, _ := newKernel(t)
	id, _ := k.CreateFrame("Frame", "", k.UIParent(), "")
	var got []any
	k.SetScript(id, "OnEvent", script.Handler{Native: func(_ widget.ID, args []any) error {
		got = append(got, args[0])
		return nil
	}})
	k.RegisterEvent(id, "PLAYER_LOGIN")
	k.RegisterAllEvents(id)
	k.UnregisterAllEventsOnly(id)
	k.FireEvent("BAG_UPDATE")
	k.FireEvent("PLAYER_LOGIN")
	if !slices.Equal(got, []any{"PLAYER_LOGIN"}) {
		t.Errorf("got %v", got)
	}
	if w, _ := k.Widgets.Get(id); w.AllEvents {
		t.Error("all-events flag still set")
	}
}
