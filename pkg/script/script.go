// Package script binds lifecycle and event handler names to host code and
// invokes them with failure isolation.
package script

import (
	"fmt"
	"slices"

	"github.com/addonsim/uisim/pkg/widget"
)

// NativeFunc is a handler implemented in Go.
type NativeFunc func(self widget.ID, args []any) error

// Handler is an opaque reference to host-callable code. The host decides
// how to run Body, Function and Method; Native is called directly.
type Handler struct {
	// Body is inline source.
	Body string
	// Function names a global function.
	Function string
	// Method names a method resolved through the widget's behavior bundles.
	Method string
	// Native is Go code that bypasses the host.
	Native NativeFunc
	// Source describes where the handler was declared.
	Source string
}

// IsZero reports whether h references no code.
func (h Handler) IsZero() bool {
	return h.Body == "" && h.Function == "" && h.Method == "" && h.Native == nil
}

func (h Handler) String() string {
	switch {
	case h.Native != nil:
		return "native"
	case h.Function != "":
		return "function " + h.Function
	case h.Method != "":
		return "method " + h.Method
	case h.Body != "":
		return fmt.Sprintf("body (%d bytes)", len(h.Body))
	default:
		return "empty"
	}
}

// Host runs handler code. Implementations may re-enter the kernel.
type Host interface {
	Call(h Handler, self widget.ID, args []any) error
}

// MixinApplier is implemented by hosts that attach behavior bundles to the
// script-side object of a widget.
type MixinApplier interface {
	ApplyMixins(id widget.ID, mixins []string) error
}

// Known handler names.
var handlerNames = []string{
	"OnLoad", "OnShow", "OnHide", "OnEvent", "OnUpdate", "OnSizeChanged",
	"OnClick", "OnDoubleClick", "PreClick", "PostClick",
	"OnEnter", "OnLeave", "OnMouseDown", "OnMouseUp", "OnMouseWheel",
	"OnDragStart", "OnDragStop", "OnReceiveDrag",
	"OnKeyDown", "OnKeyUp", "OnChar",
	"OnTextChanged", "OnEnterPressed", "OnEscapePressed", "OnEditFocusGained", "OnEditFocusLost",
	"OnValueChanged", "OnMinMaxChanged",
	"OnVerticalScroll", "OnHorizontalScroll", "OnScrollRangeChanged",
	"OnTooltipSetItem", "OnTooltipCleared", "OnAttributeChanged",
	"OnCooldownDone", "OnHyperlinkClick",
}

// IsKnownHandler reports whether name is a handler the host understands.
func IsKnownHandler(name string) bool {
	return slices.Contains(handlerNames, name)
}
