// Package errors provides structured error reporting for the widget kernel.
//
// The kernel never aborts a script-host call because of a malformed addon.
// Reference failures degrade to zero values, structural failures are returned
// to the caller, and handler failures are caught at the call boundary. All
// three end up on the single error channel configured with SetHandler.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindReference indicates a lookup of a removed or never-existing widget.
	KindReference
	// KindStructural indicates a rejected parent or anchor cycle.
	KindStructural
	// KindHandler indicates a failing script handler.
	KindHandler
	// KindLayout indicates a degraded layout computation.
	KindLayout
	// KindTemplate indicates a template definition error.
	KindTemplate
	// KindParsing indicates a markup or config parsing failure.
	KindParsing
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindStructural:
		return "structural"
	case KindHandler:
		return "handler"
	case KindLayout:
		return "layout"
	case KindTemplate:
		return "template"
	case KindParsing:
		return "parsing"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// KernelError represents a structured error raised inside the kernel.
type KernelError struct {
	// Op is the operation that failed (e.g., "layout.RectOf").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Widget is the numeric identity involved, zero if none.
	Widget uint64
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *KernelError) Error() string {
	if e.Widget != 0 {
		return fmt.Sprintf("%s [%s] widget=%d: %v", e.Op, e.Kind, e.Widget, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "event.Dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// LayoutWarning describes a layout configuration that was resolved with a
// fallback value instead of the declared one.
type LayoutWarning struct {
	// Widget is the widget being resolved.
	Widget uint64
	// Target is the anchor target involved, zero if none.
	Target uint64
	// Reason is a short description such as "anchor cycle".
	Reason string
}

func (e *LayoutWarning) Error() string {
	if e.Target != 0 {
		return fmt.Sprintf("layout of widget %d: %s (target %d)", e.Widget, e.Reason, e.Target)
	}
	return fmt.Sprintf("layout of widget %d: %s", e.Widget, e.Reason)
}

// ScriptError represents a failure inside a script handler invoked by the
// kernel (lifecycle signal or event dispatch).
type ScriptError struct {
	// Widget is the identity of the widget the handler ran for.
	Widget uint64
	// WidgetName is the widget's global name, if any.
	WidgetName string
	// Handler is the handler name (e.g., "OnEvent").
	Handler string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ScriptError) Error() string {
	who := e.WidgetName
	if who == "" {
		who = fmt.Sprintf("(anonymous id=%d)", e.Widget)
	}
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s %s: %v", who, e.Handler, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s %s: %v", who, e.Handler, e.Err)
	}
	return fmt.Sprintf("unknown error in %s %s", who, e.Handler)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the kernel.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *KernelError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleScriptError is called when a script handler fails.
	HandleScriptError(err *ScriptError)
}
