//go:build !ios && !android && (amd64 || arm64) && (darwin || linux)

// Package webview binds the native webview library with purego. Only the
// calls needed to host wvcb callbacks are exposed.
package webview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/hsfzxjy/wvcb"
)

var ErrLibraryNotFound = errors.New("webview: library not found")

type Hint int32

const (
	HintNone Hint = iota
	HintMin
	HintMax
	HintFixed
)

// Lib is a loaded libwebview. It implements wvcb.Returner.
type Lib struct {
	handle uintptr

	create    func(debug int32, window unsafe.Pointer) uintptr
	destroy   func(w uintptr) int32
	run       func(w uintptr) int32
	terminate func(w uintptr) int32
	dispatch  func(w uintptr, fn uintptr, arg unsafe.Pointer) int32
	setTitle  func(w uintptr, title string) int32
	setSize   func(w uintptr, width, height int32, hints int32) int32
	setHTML   func(w uintptr, html string) int32
	eval      func(w uintptr, js string) int32
	bind      func(w uintptr, name string, fn uintptr, arg unsafe.Pointer) int32
	unbind    func(w uintptr, name string) int32
	ret       func(w uintptr, id string, status int32, result string) int32
}

var _ wvcb.Returner = (*Lib)(nil)

// Load opens the library at path, or searches the usual locations when path
// is empty.
func Load(path string) (*Lib, error) {
	candidates := []string{path}
	if path == "" {
		candidates = searchPaths()
	}
	var handle uintptr
	var lastErr error
	for _, p := range candidates {
		h, err := purego.Dlopen(p, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			handle = h
			break
		}
		lastErr = err
	}
	if handle == 0 {
		return nil, fmt.Errorf("%w: %v", ErrLibraryNotFound, lastErr)
	}

	l := &Lib{handle: handle}
	purego.RegisterLibFunc(&l.create, handle, "webview_create")
	purego.RegisterLibFunc(&l.destroy, handle, "webview_destroy")
	purego.RegisterLibFunc(&l.run, handle, "webview_run")
	purego.RegisterLibFunc(&l.terminate, handle, "webview_terminate")
	purego.RegisterLibFunc(&l.dispatch, handle, "webview_dispatch")
	purego.RegisterLibFunc(&l.setTitle, handle, "webview_set_title")
	purego.RegisterLibFunc(&l.setSize, handle, "webview_set_size")
	purego.RegisterLibFunc(&l.setHTML, handle, "webview_set_html")
	purego.RegisterLibFunc(&l.eval, handle, "webview_eval")
	purego.RegisterLibFunc(&l.bind, handle, "webview_bind")
	purego.RegisterLibFunc(&l.unbind, handle, "webview_unbind")
	purego.RegisterLibFunc(&l.ret, handle, "webview_return")
	return l, nil
}

func searchPaths() []string {
	name := "libwebview.so"
	if runtime.GOOS == "darwin" {
		name = "libwebview.dylib"
	}
	paths := []string{name}
	if dir := os.Getenv("WEBVIEW_DIR"); dir != "" {
		paths = append([]string{filepath.Join(dir, name)}, paths...)
	}
	return append(paths, filepath.Join("/usr/local/lib", name), filepath.Join("/usr/lib", name))
}

func check(op string, code int32) error {
	if code != 0 {
		return fmt.Errorf("webview: %s failed with code %d", op, code)
	}
	return nil
}

func (l *Lib) Create(debug bool) wvcb.Window {
	var d int32
	if debug {
		d = 1
	}
	return wvcb.Window(l.create(d, nil))
}

func (l *Lib) Destroy(w wvcb.Window) error   { return check("destroy", l.destroy(uintptr(w))) }
func (l *Lib) Run(w wvcb.Window) error       { return check("run", l.run(uintptr(w))) }
func (l *Lib) Terminate(w wvcb.Window) error { return check("terminate", l.terminate(uintptr(w))) }

func (l *Lib) SetTitle(w wvcb.Window, title string) error {
	return check("set_title", l.setTitle(uintptr(w), title))
}

func (l *Lib) SetSize(w wvcb.Window, width, height int, hint Hint) error {
	return check("set_size", l.setSize(uintptr(w), int32(width), int32(height), int32(hint)))
}

func (l *Lib) SetHTML(w wvcb.Window, html string) error {
	return check("set_html", l.setHTML(uintptr(w), html))
}

func (l *Lib) Eval(w wvcb.Window, js string) error {
	return check("eval", l.eval(uintptr(w), js))
}

// Dispatch schedules fn on the webview's UI thread; fn is normally
// Callback.Ptr of a dispatch callback and arg its ArgRef.Ptr.
func (l *Lib) Dispatch(w wvcb.Window, fn uintptr, arg unsafe.Pointer) error {
	return check("dispatch", l.dispatch(uintptr(w), fn, arg))
}

func (l *Lib) Bind(w wvcb.Window, name string, fn uintptr, arg unsafe.Pointer) error {
	return check("bind", l.bind(uintptr(w), name, fn, arg))
}

func (l *Lib) Unbind(w wvcb.Window, name string) error {
	return check("unbind", l.unbind(uintptr(w), name))
}

func (l *Lib) Return(w wvcb.Window, id string, status int, result string) error {
	return check("return", l.ret(uintptr(w), id, int32(status), result))
}
