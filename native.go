//go:build !ios && !android && (amd64 || arm64) && (darwin || linux)

package wvcb

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// purego can only create a limited number of callbacks per process and never
// frees them, so every trampoline creates its two entries once and routes all
// handles through them.
type nativeEntries struct {
	once     sync.Once
	dispatch uintptr
	bind     uintptr
}

func NativeSupported() bool { return true }

func (t *Trampoline) initNative() {
	t.native.once.Do(func() {
		// void (*)(webview_t w, void *arg)
		t.native.dispatch = purego.NewCallback(func(_ purego.CDecl, w uintptr, arg unsafe.Pointer) {
			t.DispatchEntry(Window(w), arg)
		})
		// void (*)(const char *id, const char *req, void *arg)
		t.native.bind = purego.NewCallback(func(_ purego.CDecl, id *byte, req *byte, arg unsafe.Pointer) {
			t.BindEntry(goString(id), goString(req), arg)
		})
	})
}

func (t *Trampoline) nativeDispatchPtr() uintptr {
	t.initNative()
	return t.native.dispatch
}

func (t *Trampoline) nativeBindPtr() uintptr {
	t.initNative()
	return t.native.bind
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
