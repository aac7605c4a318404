package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

func TestKernelErrorString(t *testing.T) {
	err := &KernelError{
		Op:   "widget.SetParent",
		Kind: KindStructural,
		Err:  stderrors.New("cycle"),
	}
	got := err.Error()
	want := "widget.SetParent [structural]: cycle"
	if got != want {
		t.Errorf("KernelError.Error() = %q, want %q", got, want)
	}
}

func TestKernelErrorWithWidget(t *testing.T) {
	err := &KernelError{
		Op:     "layout.RectOf",
		Kind:   KindLayout,
		Widget: 42,
		Err:    &LayoutWarning{Widget: 42, Target: 7, Reason: "anchor cycle"},
	}
	got := err.Error()
	if !strings.Contains(got, "widget=42") {
		t.Errorf("error string %q should contain widget id", got)
	}
	var w *LayoutWarning
	if !stderrors.As(err, &w) {
		t.Fatal("expected KernelError to unwrap to *LayoutWarning")
	}
	if w.Target != 7 {
		t.Errorf("Target = %d, want 7", w.Target)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindReference, "reference"},
		{KindStructural, "structural"},
		{KindHandler, "handler"},
		{KindLayout, "layout"},
		{KindTemplate, "template"},
		{KindParsing, "parsing"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
	err.Op = "event.Dispatch"
	if got, want := err.Error(), "panic in event.Dispatch: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestScriptErrorString(t *testing.T) {
	err := &ScriptError{Widget: 3, WidgetName: "MyFrame", Handler: "OnLoad", Recovered: "nil index"}
	if got, want := err.Error(), "panic in MyFrame OnLoad: nil index"; got != want {
		t.Errorf("ScriptError.Error() = %q, want %q", got, want)
	}

	anon := &ScriptError{Widget: 9, Handler: "OnEvent", Err: stderrors.New("bad arg")}
	if got := anon.Error(); !strings.Contains(got, "anonymous id=9") || !strings.Contains(got, "bad arg") {
		t.Errorf("ScriptError.Error() = %q", got)
	}

	unknown := &ScriptError{WidgetName: "X", Handler: "OnShow"}
	if got, want := unknown.Error(), "unknown error in X OnShow"; got != want {
		t.Errorf("ScriptError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	rec := &Recorder{}
	SetHandler(rec)
	defer SetHandler(nil)

	Report(&KernelError{Op: "test.op", Kind: KindTemplate, Err: stderrors.New("x")})

	if len(rec.Errors) != 1 {
		t.Fatalf("recorded %d errors, want 1", len(rec.Errors))
	}
	if rec.Errors[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
	if rec.Count(KindTemplate) != 1 {
		t.Errorf("Count(KindTemplate) = %d, want 1", rec.Count(KindTemplate))
	}
}

func TestWarn(t *testing.T) {
	rec := &Recorder{}
	SetHandler(rec)
	defer SetHandler(nil)

	Warn("layout.RectOf", &LayoutWarning{Widget: 5, Reason: "dangling anchor"})
	Warn("layout.RectOf", nil)

	if rec.Count(KindLayout) != 1 {
		t.Fatalf("Count(KindLayout) = %d, want 1", rec.Count(KindLayout))
	}
	if rec.Errors[0].Widget != 5 {
		t.Errorf("Widget = %d, want 5", rec.Errors[0].Widget)
	}
}

func TestReportScriptError(t *testing.T) {
	rec := &Recorder{}
	SetHandler(rec)
	defer SetHandler(nil)

	ReportScriptError(&ScriptError{Widget: 1, Handler: "OnEvent", Err: stderrors.New("x")})
	ReportScriptError(nil)

	if len(rec.Scripts) != 1 {
		t.Fatalf("recorded %d script errors, want 1", len(rec.Scripts))
	}
	if rec.Scripts[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	rec := &Recorder{}
	SetHandler(rec)
	defer SetHandler(nil)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if len(rec.Panics) != 1 {
		t.Fatal("expected panic to be recovered and captured")
	}
	if rec.Panics[0].Op != "test.recover" {
		t.Errorf("Op = %q, want %q", rec.Panics[0].Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	rec := &Recorder{}
	SetHandler(rec)
	defer SetHandler(nil)

	var got any
	func() {
		defer RecoverWithCallback("test.cb", func(r any) { got = r })
		panic(7)
	}()
	if got != 7 {
		t.Errorf("callback value = %v, want 7", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf}

	h.HandleError(&KernelError{Op: "template.Expand", Kind: KindTemplate, Err: stderrors.New("cycle")})
	h.HandleScriptError(&ScriptError{WidgetName: "F", Handler: "OnLoad", Err: stderrors.New("oops")})
	h.HandlePanic(&PanicError{Op: "x", Value: "y"})

	out := buf.String()
	for _, want := range []string{
		"[uisim template] template.Expand: cycle",
		"[uisim script] error in F OnLoad: oops",
		"[uisim panic] x: y",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
