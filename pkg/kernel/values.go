package kernel

import "github.com/addonsim/uisim/pkg/widget"

// SetMinMaxValues sets the bounds of a slider or status bar. When the new
// bounds move the current value, OnValueChanged fires with it.
func (k *Kernel) SetMinMaxValues(id widget.ID, lo, hi float64) bool {
	w, ok := k.Widgets.Get(id)
	if !ok || w.Range == nil {
		return false
	}
	before := w.Range.Value
	w.Range.SetMinMax(lo, hi)
	if w.Range.Value != before {
		k.Runner.Fire(id, "OnValueChanged", w.Range.Value)
	}
	return true
}

// SetValue stores a clamped value and fires OnValueChanged when it differs
// from the previous one.
func (k *Kernel) SetValue(id widget.ID, v float64) bool {
	w, ok := k.Widgets.Get(id)
	if !ok || w.Range == nil {
		return false
	}
	before := w.Range.Value
	w.Range.SetValue(v)
	if w.Range.Value != before {
		k.Runner.Fire(id, "OnValueChanged", w.Range.Value)
	}
	return true
}

// Value returns the value model of id, if it has one.
func (k *Kernel) Value(id widget.ID) (widget.Range, bool) {
	w, ok := k.Widgets.Get(id)
	if !ok || w.Range == nil {
		return widget.Range{}, false
	}
	return *w.Range, true
}
