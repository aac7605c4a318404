package kernel

import "github.com/addonsim/uisim/pkg/widget"

// Show sets id shown.
func (k *Kernel) Show(id widget.ID) bool {
	return k.SetShown(id, true)
}

// Hide sets id hidden.
func (k *Kernel) Hide(id widget.ID) bool {
	return k.SetShown(id, false)
}

// SetShown changes the own shown flag of id and fires OnShow or OnHide, in
// pre-order, on every widget of the subtree whose effective visibility
// changed.
func (k *Kernel) SetShown(id widget.ID, shown bool) bool {
	reg := k.Widgets
	if !reg.Exists(id) {
		return false
	}
	subtree := append([]widget.ID{id}, reg.Descendants(id)...)
	before := make([]bool, len(subtree))
	for i, wid := range subtree {
		before[i] = reg.IsVisible(wid)
	}
	reg.SetShown(id, shown)

	var changed []widget.ID
	for i, wid := range subtree {
		if reg.IsVisible(wid) != before[i] {
			changed = append(changed, wid)
		}
	}
	handler := "OnHide"
	if shown {
		handler = "OnShow"
	}
	for _, wid := range changed {
		if k.Bindings.Has(wid, handler) {
			k.Runner.Fire(wid, handler)
		}
	}
	return true
}

// IsShown reports the own shown flag of id.
func (k *Kernel) IsShown(id widget.ID) bool {
	return k.Widgets.IsShown(id)
}

// IsVisible reports whether id and all its ancestors are shown.
func (k *Kernel) IsVisible(id widget.ID) bool {
	return k.Widgets.IsVisible(id)
}
