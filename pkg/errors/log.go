package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out overrides the destination; nil means os.Stderr.
	Out io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

// HandleError logs a KernelError.
func (h *LogHandler) HandleError(err *KernelError) {
	if err == nil {
		return
	}
	w := h.out()
	if h.Verbose {
		fmt.Fprintf(w, "[uisim %s] %s", err.Kind, err.Op)
		if err.Widget != 0 {
			fmt.Fprintf(w, " widget=%d", err.Widget)
		}
		fmt.Fprintf(w, ": %v\n", err.Err)
		if err.StackTrace != "" {
			fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
		}
	} else {
		fmt.Fprintf(w, "[uisim %s] %s: %v\n", err.Kind, err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	w := h.out()
	if err.Op != "" {
		fmt.Fprintf(w, "[uisim panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(w, "[uisim panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleScriptError logs a ScriptError.
func (h *LogHandler) HandleScriptError(err *ScriptError) {
	if err == nil {
		return
	}
	w := h.out()
	fmt.Fprintf(w, "[uisim script] %s\n", err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// Recorder is an ErrorHandler that keeps every report in memory.
// Tests and diagnostic tools install it with SetHandler.
type Recorder struct {
	mu      sync.Mutex
	Errors  []*KernelError
	Panics  []*PanicError
	Scripts []*ScriptError
}

// HandleError records err.
func (r *Recorder) HandleError(err *KernelError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

// HandlePanic records err.
func (r *Recorder) HandlePanic(err *PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Panics = append(r.Panics, err)
}

// HandleScriptError records err.
func (r *Recorder) HandleScriptError(err *ScriptError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Scripts = append(r.Scripts, err)
}

// Count returns the number of recorded errors of the given kind.
func (r *Recorder) Count(kind ErrorKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, err := range r.Errors {
		if err.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = nil
	r.Panics = nil
	r.Scripts = nil
}
