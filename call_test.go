package wvcb

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCallFuncArguments(t *testing.T) {
	type args struct {
		W uintptr
		N int
		S string
		M map[string]any
	}
	var got args
	fn := reflect.ValueOf(func(w uintptr, n int, s string, m map[string]any) {
		got = args{w, n, s, m}
	})

	tests := []struct {
		name string
		in   []any
		want args
	}{
		{"exact", []any{uintptr(1), 2, "s", map[string]any{"k": 1.0}}, args{1, 2, "s", map[string]any{"k": 1.0}}},
		{"converted", []any{Window(7), 3.0, "s", nil}, args{7, 3, "s", nil}},
		{"missing", []any{Window(1)}, args{W: 1}},
		{"surplus", []any{Window(1), 1, "a", nil, "extra", 5}, args{1, 1, "a", nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = args{}
			if _, err := callFunc(fn, tt.in); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCallFuncVariadic(t *testing.T) {
	fn := reflect.ValueOf(func(prefix string, rest ...int) []int { return append([]int{len(prefix)}, rest...) })
	out, err := callFunc(fn, []any{"ab", 1.0, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2, 1, 2, 3}, out); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	out, _ = callFunc(fn, nil)
	if diff := cmp.Diff([]int{0}, out); diff != "" {
		t.Errorf("no args (-want +got):\n%s", diff)
	}
}

func TestCallFuncResults(t *testing.T) {
	boom := errors.New("boom")
	out, err := callFunc(reflect.ValueOf(func() (int, error) { return 0, boom }), nil)
	if !errors.Is(err, boom) || out != 0 {
		t.Errorf("got (%v, %v)", out, err)
	}
	out, err = callFunc(reflect.ValueOf(func() error { return nil }), nil)
	if err != nil || out != nil {
		t.Errorf("got (%v, %v)", out, err)
	}
	out, err = callFunc(reflect.ValueOf(func() string { return "r" }), nil)
	if err != nil || out != "r" {
		t.Errorf("got (%v, %v)", out, err)
	}
}

func TestCallbackErrorsAreReported(t *testing.T) {
	errs := make(chan error, 4)
	tr := newTestTrampoline(t, WithErrorHandler(func(err error) { errs <- err }))
	boom := errors.New("boom")

	failing := tr.NewHandle(func(w Window, v any) error { return boom })
	failing.setKind(CK_DISPATCH)
	tr.DispatchEntry(0, mustStage(t, failing, nil, 0))

	panicking := tr.NewHandle(func(w Window, v any) { panic("oops") })
	panicking.setKind(CK_DISPATCH)
	tr.DispatchEntry(0, mustStage(t, panicking, nil, 0))

	// nothing staged under argument 9
	tr.DispatchEntry(0, idsPtr(failing.Uid(), 9))

	var got []error
	for i := 0; i < 3; i++ {
		got = append(got, <-errs)
	}
	var cbErr *CallbackError
	if !errors.As(got[0], &cbErr) || !errors.Is(got[0], boom) || cbErr.Uid != failing.Uid() {
		t.Errorf("returned error reported as %v", got[0])
	}
	if !errors.As(got[1], &cbErr) || cbErr.Uid != panicking.Uid() || cbErr.Kind != CK_DISPATCH {
		t.Errorf("panic reported as %v", got[1])
	}
	if !errors.Is(got[2], ErrArgNotFound) {
		t.Errorf("missing argument reported as %v", got[2])
	}

	for _, h := range []*Handle{failing, panicking} {
		if h.Pending() != 0 || h.NumArgs() != 0 {
			t.Errorf("%s: pending=%d args=%d", h, h.Pending(), h.NumArgs())
		}
	}
	if got := tr.Stats().Failed; got != 3 {
		t.Errorf("failed = %d", got)
	}
}
