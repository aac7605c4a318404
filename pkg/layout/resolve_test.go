package layout

import (
	"math"
	"testing"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/widget"
)

var screen = Screen{Width: 1000, Height: 800}

func newParent(t *testing.T, reg *widget.Registry) widget.ID {
	t.Helper()
	p := reg.Create(widget.KindFrame)
	reg.SetSize(p, 400, 300)
	if err := reg.SetPoint(p, widget.Anchor{Point: widget.TopLeft, RelativePoint: widget.TopLeft, X: 100, Y: -50}); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNoAnchorsUsesParentOrigin(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	reg.SetSize(c, 30, 20)

	got, warnings := Resolve(reg, c, screen)
	want := Rect{X: 100, Y: 50, Width: 30, Height: 20}
	if got != want {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestRootWithoutAnchorsAtScreenOrigin(t *testing.T) {
	reg := widget.NewRegistry()
	id := reg.Create(widget.KindFrame)
	reg.SetSize(id, 10, 10)
	got, _ := Resolve(reg, id, screen)
	if got != (Rect{Width: 10, Height: 10}) {
		t.Errorf("rect = %+v", got)
	}
}

func TestSingleAnchorYUp(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	reg.SetSize(c, 40, 20)
	// Center of c at parent center, moved 10 right and 30 up.
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.Center, RelativePoint: widget.Center, X: 10, Y: 30})

	got, _ := Resolve(reg, c, screen)
	want := Rect{X: 100 + 200 + 10 - 20, Y: 50 + 150 - 30 - 10, Width: 40, Height: 20}
	if got != want {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
}

func TestOppositeEdgesDeriveSize(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.TopLeft, RelativePoint: widget.TopLeft, X: 10, Y: -10})
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.BottomRight, RelativePoint: widget.BottomRight, X: -10, Y: 10})

	got, _ := Resolve(reg, c, screen)
	want := Rect{X: 110, Y: 60, Width: 380, Height: 280}
	if got != want {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
}

func TestInvertedEdgesUseAbsoluteDifference(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.Left, RelativePoint: widget.Right})
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.Right, RelativePoint: widget.Left})
	reg.SetHeight(c, 10)

	got, _ := Resolve(reg, c, screen)
	if got.X != 100 || got.Width != 400 {
		t.Errorf("x/width = %v/%v, want 100/400", got.X, got.Width)
	}
}

func TestExplicitSizeBeatsDerivation(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	reg.SetSize(c, 50, 40)
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.TopLeft, RelativePoint: widget.TopLeft})
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.BottomRight, RelativePoint: widget.BottomRight})

	got, _ := Resolve(reg, c, screen)
	want := Rect{X: 100, Y: 50, Width: 50, Height: 40}
	if got != want {
		t.Errorf("rect = %+v, want first anchor with explicit size %+v", got, want)
	}
}

func TestAnchorToSibling(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	a := reg.Create(widget.KindFrame)
	b := reg.Create(widget.KindFrame)
	_ = reg.SetParent(a, p)
	_ = reg.SetParent(b, p)
	reg.SetSize(a, 20, 20)
	reg.SetSize(b, 20, 20)
	_ = reg.SetPoint(b, widget.Anchor{Point: widget.TopLeft, Relative: a, RelativePoint: widget.BottomLeft, Y: -5})

	got, _ := Resolve(reg, b, screen)
	want := Rect{X: 100, Y: 75, Width: 20, Height: 20}
	if got != want {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
}

func TestDanglingAnchorFallsBackToParent(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	gone := reg.Create(widget.KindFrame)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	reg.SetSize(c, 10, 10)
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.TopLeft, Relative: gone, RelativePoint: widget.TopLeft})
	reg.Remove(gone)

	got, warnings := Resolve(reg, c, screen)
	if got.X != 100 || got.Y != 50 {
		t.Errorf("origin = %v,%v, want parent origin", got.X, got.Y)
	}
	if len(warnings) != 1 || warnings[0].Reason != ReasonDanglingAnchor {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestCycleThroughParentTerminates(t *testing.T) {
	reg := widget.NewRegistry()
	p := reg.Create(widget.KindFrame)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	reg.SetSize(c, 10, 10)
	reg.SetSize(p, 10, 10)
	// Parent anchors to its child, child anchors to its parent implicitly.
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.TopLeft, RelativePoint: widget.TopLeft, X: 5})
	if err := reg.SetPoint(p, widget.Anchor{Point: widget.TopLeft, Relative: c, RelativePoint: widget.TopLeft}); err == nil {
		t.Fatal("SetPoint accepted a cycle")
	}
	// A cycle that SetPoint cannot see: the child is reparented afterwards.
	q := reg.Create(widget.KindFrame)
	_ = reg.SetPoint(q, widget.Anchor{Point: widget.TopLeft, Relative: c, RelativePoint: widget.TopLeft})
	_ = reg.SetParent(p, q)

	_, warnings := Resolve(reg, q, screen)
	found := false
	for _, w := range warnings {
		if w.Reason == ReasonAnchorCycle {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want an anchor cycle", warnings)
	}
}

func TestUnknownWidget(t *testing.T) {
	reg := widget.NewRegistry()
	got, warnings := Resolve(reg, 7, screen)
	if got != (Rect{}) || len(warnings) != 1 {
		t.Errorf("got %+v, %v", got, warnings)
	}
}

func TestFontStringIntrinsicSize(t *testing.T) {
	reg := widget.NewRegistry()
	id := reg.Create(widget.KindFontString)
	w, _ := reg.Get(id)
	w.Text = "Hello"
	got, _ := Resolve(reg, id, screen)
	if got.Width != 35 || got.Height != 13 {
		t.Errorf("size = %vx%v, want 35x13", got.Width, got.Height)
	}
	reg.SetWidth(id, 100)
	got, _ = Resolve(reg, id, screen)
	if got.Width != 100 || got.Height != 13 {
		t.Errorf("size = %vx%v, want 100x13", got.Width, got.Height)
	}
}

func TestNonFiniteDegrades(t *testing.T) {
	reg := widget.NewRegistry()
	p := newParent(t, reg)
	c := reg.Create(widget.KindFrame)
	_ = reg.SetParent(c, p)
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.TopLeft, RelativePoint: widget.TopLeft, X: math.Inf(1)})
	got, warnings := Resolve(reg, c, screen)
	if got != (Rect{X: 100, Y: 50}) {
		t.Errorf("rect = %+v", got)
	}
	if len(warnings) != 1 || warnings[0].Reason != ReasonNonFinite {
		t.Errorf("warnings = %v", warnings)
	}
}

type recordingHandler struct {
	uierrors.LogHandler
	warnings []*uierrors.KernelError
}

func (h *recordingHandler) HandleError(err *uierrors.KernelError) {
	h.warnings = append(h.warnings, err)
}

func TestRectOfReportsWarnings(t *testing.T) {
	h := &recordingHandler{}
	uierrors.SetHandler(h)
	defer uierrors.SetHandler(nil)

	reg := widget.NewRegistry()
	RectOf(reg, 3, screen)
	if len(h.warnings) != 1 || h.warnings[0].Kind != uierrors.KindLayout {
		t.Errorf("reported = %v", h.warnings)
	}
}

func TestResolveAllMatchesResolveAcrossCycles(t *testing.T) {
	reg := widget.NewRegistry()
	a := reg.Create(widget.KindFrame)
	b := reg.Create(widget.KindFrame)
	c := reg.Create(widget.KindFrame)
	for _, id := range []widget.ID{a, b, c} {
		reg.SetSize(id, 10, 10)
	}
	_ = reg.SetPoint(a, widget.Anchor{Point: widget.TopLeft, Relative: b, RelativePoint: widget.BottomRight, X: 5})
	_ = reg.SetPoint(c, widget.Anchor{Point: widget.TopLeft, Relative: b, RelativePoint: widget.TopRight})
	// SetPoint rejects the closing edge, so plant it directly.
	wb, _ := reg.Get(b)
	wb.Anchors = []widget.Anchor{{Point: widget.TopLeft, Relative: a, RelativePoint: widget.BottomRight}}

	all, warnings := ResolveAll(reg, screen)
	for _, id := range []widget.ID{a, b, c} {
		want, _ := Resolve(reg, id, screen)
		if all[id] != want {
			t.Errorf("widget %d: ResolveAll = %+v, Resolve = %+v", id, all[id], want)
		}
	}
	if want := (Rect{X: 15, Y: 10, Width: 10, Height: 10}); all[b] != want {
		t.Errorf("b = %+v, want %+v", all[b], want)
	}
	seen := make(map[uierrors.LayoutWarning]bool)
	for _, w := range warnings {
		if seen[*w] {
			t.Errorf("duplicate warning %+v", *w)
		}
		seen[*w] = true
	}
}
