package script

import (
	"fmt"
	"time"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/widget"
)

// Runner invokes bound handler chains through a Host. Every failure is
// reported to the error channel and never reaches the caller.
type Runner struct {
	Registry *widget.Registry
	Bindings *Bindings
	Host     Host
}

// Fire runs the chain bound to name on id with args and returns how many
// handlers completed without error. The chain is copied before the first
// handler runs, so handlers may rebind freely.
func (r *Runner) Fire(id widget.ID, name string, args ...any) int {
	chain := r.Bindings.Chain(id, name)
	ran := 0
	for _, h := range chain {
		if !r.Registry.Exists(id) {
			break
		}
		if r.invoke(id, name, h, args) {
			ran++
		}
	}
	return ran
}

func (r *Runner) invoke(id widget.ID, name string, h Handler, args []any) (ok bool) {
	defer func() {
		if v := recover(); v != nil {
			r.report(id, name, v, nil)
			ok = false
		}
	}()
	var err error
	switch {
	case h.Native != nil:
		err = h.Native(id, args)
	case r.Host != nil:
		err = r.Host.Call(h, id, args)
	default:
		err = fmt.Errorf("no script host for %s", h)
	}
	if err != nil {
		r.report(id, name, nil, err)
		return false
	}
	return true
}

func (r *Runner) report(id widget.ID, name string, recovered any, err error) {
	se := &uierrors.ScriptError{
		Widget:     uint64(id),
		Handler:    name,
		Recovered:  recovered,
		Err:        err,
		StackTrace: uierrors.CaptureStack(),
		Timestamp:  time.Now(),
	}
	if w, ok := r.Registry.Get(id); ok {
		se.WidgetName = w.Name
	}
	uierrors.ReportScriptError(se)
}
