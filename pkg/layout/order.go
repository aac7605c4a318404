package layout

import (
	"cmp"
	"slices"

	"github.com/addonsim/uisim/pkg/widget"
)

// Order returns every live widget sorted bottom to top by stratum, then
// level, then identity. It is recomputed on every call.
func Order(reg *widget.Registry) []widget.ID {
	ids := reg.IDs()
	slices.SortStableFunc(ids, func(a, b widget.ID) int {
		wa, _ := reg.Get(a)
		wb, _ := reg.Get(b)
		if c := cmp.Compare(wa.Strata, wb.Strata); c != 0 {
			return c
		}
		if c := cmp.Compare(wa.Level, wb.Level); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}

// HitTest returns the topmost visible, mouse-enabled widget containing the
// point (x, y).
func HitTest(reg *widget.Registry, screen Screen, x, y float64) (widget.ID, bool) {
	order := Order(reg)
	rects, _ := ResolveAll(reg, screen)
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		w, _ := reg.Get(id)
		if !w.MouseEnabled || !reg.IsVisible(id) {
			continue
		}
		if rects[id].Contains(x, y) {
			return id, true
		}
	}
	return widget.None, false
}
