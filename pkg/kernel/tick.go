package kernel

import "github.com/addonsim/uisim/pkg/widget"

// AddMessage appends a line to a message frame.
func (k *Kernel) AddMessage(id widget.ID, text string) bool {
	w, ok := k.Widgets.Get(id)
	if !ok || w.Messages == nil {
		return false
	}
	w.Messages.Add(text)
	return true
}

// Tick advances time by dt seconds: message lines age and every visible
// widget with an OnUpdate handler receives the elapsed time.
func (k *Kernel) Tick(dt float64) {
	if dt < 0 {
		return
	}
	var updates []widget.ID
	for _, id := range k.Widgets.IDs() {
		w, _ := k.Widgets.Get(id)
		if w.Messages != nil {
			w.Messages.Tick(dt)
		}
		if k.Bindings.Has(id, "OnUpdate") && k.Widgets.IsVisible(id) {
			updates = append(updates, id)
		}
	}
	for _, id := range updates {
		if k.Widgets.IsVisible(id) {
			k.Runner.Fire(id, "OnUpdate", dt)
		}
	}
}
