// Package event routes named game events to the widgets subscribed to them.
package event

import (
	"maps"
	"slices"

	"github.com/addonsim/uisim/pkg/widget"
)

// HandlerName is the handler invoked for every delivered event.
const HandlerName = "OnEvent"

// Firer runs a widget's handler chain. script.Runner implements it.
type Firer interface {
	Fire(id widget.ID, name string, args ...any) int
}

// Dispatcher keeps, per event name, the subscribed widgets in registration
// order, plus the widgets subscribed to every event.
type Dispatcher struct {
	reg       *widget.Registry
	firer     Firer
	listeners map[string][]widget.ID
	all       []widget.ID
}

// NewDispatcher creates a dispatcher delivering through firer.
func NewDispatcher(reg *widget.Registry, firer Firer) *Dispatcher {
	return &Dispatcher{
		reg:       reg,
		firer:     firer,
		listeners: make(map[string][]widget.ID),
	}
}

// Subscribe adds id to the listeners of event. Subscribing twice keeps the
// original position. Returns false for unknown widgets or empty names.
func (d *Dispatcher) Subscribe(id widget.ID, event string) bool {
	w, ok := d.reg.Get(id)
	if !ok || event == "" {
		return false
	}
	if w.Events == nil {
		w.Events = make(map[string]struct{})
	}
	w.Events[event] = struct{}{}
	if !slices.Contains(d.listeners[event], id) {
		d.listeners[event] = append(d.listeners[event], id)
	}
	return true
}

// Unsubscribe removes id from the listeners of event.
func (d *Dispatcher) Unsubscribe(id widget.ID, event string) {
	if w, ok := d.reg.Get(id); ok {
		delete(w.Events, event)
	}
	d.drop(event, id)
}

func (d *Dispatcher) drop(event string, id widget.ID) {
	ids := d.listeners[event]
	i := slices.Index(ids, id)
	if i < 0 {
		return
	}
	ids = slices.Delete(slices.Clone(ids), i, i+1)
	if len(ids) == 0 {
		delete(d.listeners, event)
		return
	}
	d.listeners[event] = ids
}

// UnsubscribeAll removes id from every event, including the all-events set.
func (d *Dispatcher) UnsubscribeAll(id widget.ID) {
	for _, event := range slices.Collect(maps.Keys(d.listeners)) {
		d.drop(event, id)
	}
	if i := slices.Index(d.all, id); i >= 0 {
		d.all = slices.Delete(slices.Clone(d.all), i, i+1)
	}
	if w, ok := d.reg.Get(id); ok {
		w.Events = nil
		w.AllEvents = false
	}
}

// SubscribeAll delivers every event to id. It is independent of the named
// subscriptions.
func (d *Dispatcher) SubscribeAll(id widget.ID) bool {
	w, ok := d.reg.Get(id)
	if !ok {
		return false
	}
	w.AllEvents = true
	if !slices.Contains(d.all, id) {
		d.all = append(d.all, id)
	}
	return true
}

// UnsubscribeAllEvents clears the all-events flag of id only.
func (d *Dispatcher) UnsubscribeAllEvents(id widget.ID) {
	if w, ok := d.reg.Get(id); ok {
		w.AllEvents = false
	}
	if i := slices.Index(d.all, id); i >= 0 {
		d.all = slices.Delete(slices.Clone(d.all), i, i+1)
	}
}

// IsSubscribed reports whether id receives event, by name or through the
// all-events flag.
func (d *Dispatcher) IsSubscribed(id widget.ID, event string) bool {
	return slices.Contains(d.listeners[event], id) || slices.Contains(d.all, id)
}

// Listeners returns the named subscribers of event in registration order.
func (d *Dispatcher) Listeners(event string) []widget.ID {
	return slices.Clone(d.listeners[event])
}

// Events returns every event with at least one named subscriber, sorted.
func (d *Dispatcher) Events() []string {
	return slices.Sorted(maps.Keys(d.listeners))
}

// Dispatch delivers event to its named listeners in registration order and
// then to the all-events subscribers not already reached. The listener set
// is fixed before the first handler runs; widgets removed by a handler are
// skipped. Returns the number of widgets the event was delivered to.
func (d *Dispatcher) Dispatch(event string, args ...any) int {
	named := slices.Clone(d.listeners[event])
	all := slices.Clone(d.all)

	payload := make([]any, 0, len(args)+1)
	payload = append(payload, event)
	payload = append(payload, args...)

	delivered := make(map[widget.ID]bool, len(named)+len(all))
	for _, id := range append(named, all...) {
		if delivered[id] || !d.reg.Exists(id) {
			continue
		}
		delivered[id] = true
		d.firer.Fire(id, HandlerName, payload...)
	}
	return len(delivered)
}
