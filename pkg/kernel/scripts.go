package kernel

import (
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/widget"
)

// SetScript replaces the handler chain for name. A zero handler clears it.
func (k *Kernel) SetScript(id widget.ID, name string, h script.Handler) bool {
	if !k.Widgets.Exists(id) {
		return false
	}
	k.Bindings.Set(id, name, h)
	return true
}

// HookScript appends h to the chain for name.
func (k *Kernel) HookScript(id widget.ID, name string, h script.Handler) bool {
	if !k.Widgets.Exists(id) {
		return false
	}
	k.Bindings.Hook(id, name, h)
	return true
}

// GetScript returns the first handler bound to name.
func (k *Kernel) GetScript(id widget.ID, name string) (script.Handler, bool) {
	return k.Bindings.Get(id, name)
}

// Fire runs the chain bound to name on id.
func (k *Kernel) Fire(id widget.ID, name string, args ...any) int {
	return k.Runner.Fire(id, name, args...)
}

// RegisterEvent subscribes id to event.
func (k *Kernel) RegisterEvent(id widget.ID, event string) bool {
	return k.Events.Subscribe(id, event)
}

// UnregisterEvent unsubscribes id from event.
func (k *Kernel) UnregisterEvent(id widget.ID, event string) {
	k.Events.Unsubscribe(id, event)
}

// UnregisterAllEvents unsubscribes id from everything.
func (k *Kernel) UnregisterAllEvents(id widget.ID) {
	k.Events.UnsubscribeAll(id)
}

// RegisterAllEvents delivers every event to id.
func (k *Kernel) RegisterAllEvents(id widget.ID) bool {
	return k.Events.SubscribeAll(id)
}

// UnregisterAllEventsOnly stops delivering unsubscribed events to id while
// keeping its named subscriptions.
func (k *Kernel) UnregisterAllEventsOnly(id widget.ID) {
	k.Events.UnsubscribeAllEvents(id)
}

// FireEvent dispatches event to its subscribers.
func (k *Kernel) FireEvent(event string, args ...any) int {
	return k.Events.Dispatch(event, args...)
}
