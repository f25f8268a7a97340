//go:build !ios && !android && (amd64 || arm64) && (darwin || linux)

package wvcb

import "testing"

func TestNativeEntries(t *testing.T) {
	tr := newTestTrampoline(t)
	a := tr.NewHandle(func() {})
	b := tr.NewHandle(func() {})

	dispatch := a.DispatchPtr()
	if dispatch == 0 || b.DispatchPtr() != dispatch {
		t.Errorf("dispatch entries %#x and %#x", dispatch, b.DispatchPtr())
	}
	bind := b.BindPtr()
	if bind == 0 || bind == dispatch {
		t.Errorf("bind entry %#x", bind)
	}
	if a.Kind() != CK_DISPATCH || b.Kind() != CK_BIND {
		t.Errorf("kinds %s, %s", a.Kind(), b.Kind())
	}
}

func TestGoString(t *testing.T) {
	buf := []byte("hello\x00tail")
	if got := goString(&buf[0]); got != "hello" {
		t.Errorf("goString = %q", got)
	}
	if got := goString(nil); got != "" {
		t.Errorf("goString(nil) = %q", got)
	}
}
