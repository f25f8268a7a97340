package wvcb

import (
	"testing"
	"time"
	"unsafe"
)

func newTestLoop(t *testing.T, opts ...Option) *Loop {
	t.Helper()
	l := NewLoop(opts...).Start()
	t.Cleanup(l.Close)
	return l
}

func newTestTrampoline(t *testing.T, opts ...Option) *Trampoline {
	t.Helper()
	return New(newTestLoop(t, opts...))
}

func idsPtr(uid, argId uint32) unsafe.Pointer {
	ids := &CallIds{uid, argId}
	return ids.Pointer()
}

func mustStage(t *testing.T, h *Handle, v any, argId uint32) unsafe.Pointer {
	t.Helper()
	if err := h.StageArg(v, argId); err != nil {
		t.Fatal(err)
	}
	return idsPtr(h.Uid(), argId)
}

// waitFor polls cond until it holds or a few seconds have passed.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// blockLoop occupies the loop until the returned release func is called.
func blockLoop(t *testing.T, l *Loop) (release func()) {
	t.Helper()
	entered := make(chan struct{})
	gate := make(chan struct{})
	if err := l.Post(func() {
		close(entered)
		<-gate
	}); err != nil {
		t.Fatal(err)
	}
	<-entered
	return func() { close(gate) }
}
