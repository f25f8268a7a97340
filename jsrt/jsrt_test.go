package jsrt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hsfzxjy/wvcb"
)

func newRuntime(t *testing.T, opts ...wvcb.Option) (*wvcb.Loop, *Runtime) {
	t.Helper()
	loop := wvcb.NewLoop(opts...).Start()
	t.Cleanup(loop.Close)
	rt, err := New(loop)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rt.Close() })
	return loop, rt
}

func evalString(t *testing.T, rt *Runtime, src string) string {
	t.Helper()
	v, err := rt.Eval(src)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected string, got %T", v)
	}
	return s
}

func TestDispatchToScript(t *testing.T) {
	loop, rt := newRuntime(t)
	if _, err := rt.Eval(`var seen = []; function onDispatch(w, arg) { seen.push([w, arg]) }`); err != nil {
		t.Fatal(err)
	}

	tr := wvcb.New(loop)
	cb := tr.Dispatch(rt.Func("onDispatch"))
	defer cb.Close(true)

	ref, err := cb.Arg(map[string]any{"n": 1})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		tr.DispatchEntry(7, ref.Ptr)
	}()
	<-done

	got := evalString(t, rt, `JSON.stringify(seen)`)
	if diff := cmp.Diff(`[[7,{"n":1}]]`, got); diff != "" {
		t.Errorf("seen mismatch (-want +got):\n%s", diff)
	}
}

type recordingReturner struct {
	status int
	result string
}

func (r *recordingReturner) Return(w wvcb.Window, id string, status int, result string) error {
	r.status, r.result = status, result
	return nil
}

func TestBindToScript(t *testing.T) {
	loop, rt := newRuntime(t)
	if _, err := rt.Eval(`function add(a, b, bound) { return {sum: a + b, bound: bound} }`); err != nil {
		t.Fatal(err)
	}

	tr := wvcb.New(loop)
	ret := &recordingReturner{}
	cb := tr.Bind(1, rt.BindFunc("add"), ret)
	defer cb.Close(true)

	ref, err := cb.Arg("ctx")
	if err != nil {
		t.Fatal(err)
	}
	tr.BindEntry("req-1", `[2, 3]`, ref.Ptr)

	if ret.status != 0 {
		t.Fatalf("status = %d, result %s", ret.status, ret.result)
	}
	if _, err := rt.Eval(`globalThis.__r = ` + ret.result); err != nil {
		t.Fatal(err)
	}
	got := evalString(t, rt, `__r.sum + ":" + __r.bound`)
	if diff := cmp.Diff("5:ctx", got); diff != "" {
		t.Errorf("bind result mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptErrorIsReported(t *testing.T) {
	errs := make(chan error, 1)
	loop, rt := newRuntime(t, wvcb.WithErrorHandler(func(err error) { errs <- err }))
	if _, err := rt.Eval(`function boom() { throw new Error("boom") }`); err != nil {
		t.Fatal(err)
	}

	tr := wvcb.New(loop)
	cb := tr.Dispatch(rt.Func("boom"))
	defer cb.Close(true)
	ref, err := cb.Arg(nil)
	if err != nil {
		t.Fatal(err)
	}
	tr.DispatchEntry(0, ref.Ptr)

	err = <-errs
	var cbErr *wvcb.CallbackError
	if !errors.As(err, &cbErr) {
		t.Fatalf("expected CallbackError, got %v", err)
	}
	if cbErr.Uid != cb.Uid() {
		t.Errorf("uid = %d, want %d", cbErr.Uid, cb.Uid())
	}
	if cb.Handle().Pending() != 0 {
		t.Errorf("pending = %d after failed delivery", cb.Handle().Pending())
	}
}

func TestRegisterAndClose(t *testing.T) {
	_, rt := newRuntime(t)
	if err := rt.Register("greet", func(name string) string { return "hi " + name }); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("hi wv", evalString(t, rt, `greet("wv")`)); diff != "" {
		t.Errorf("greet mismatch (-want +got):\n%s", diff)
	}

	if err := rt.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Eval(`1`); !errors.Is(err, ErrClosed) {
		t.Errorf("Eval after Close: %v", err)
	}
}

func TestLoadTypeScriptFile(t *testing.T) {
	_, rt := newRuntime(t)
	path := filepath.Join(t.TempDir(), "handlers.ts")
	src := `function double(x: number): number { return x * 2 }
var doubled: string = String(double(21));
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := rt.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("42", evalString(t, rt, `doubled`)); diff != "" {
		t.Errorf("doubled mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileReportsErrors(t *testing.T) {
	if _, err := Compile(`function (`, false); err == nil {
		t.Error("expected a syntax error")
	}
}
