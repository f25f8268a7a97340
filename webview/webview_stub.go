//go:build !(!ios && !android && (amd64 || arm64) && (darwin || linux))

package webview

import (
	"errors"
	"unsafe"

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

type Lib struct{}

func Load(path string) (*Lib, error) { return nil, wvcb.ErrUnsupported }

func (l *Lib) Create(debug bool) wvcb.Window                                { return 0 }
func (l *Lib) Destroy(w wvcb.Window) error                                  { return wvcb.ErrUnsupported }
func (l *Lib) Run(w wvcb.Window) error                                      { return wvcb.ErrUnsupported }
func (l *Lib) Terminate(w wvcb.Window) error                                { return wvcb.ErrUnsupported }
func (l *Lib) SetTitle(w wvcb.Window, title string) error                   { return wvcb.ErrUnsupported }
func (l *Lib) SetSize(w wvcb.Window, width, height int, hint Hint) error    { return wvcb.ErrUnsupported }
func (l *Lib) SetHTML(w wvcb.Window, html string) error                     { return wvcb.ErrUnsupported }
func (l *Lib) Eval(w wvcb.Window, js string) error                          { return wvcb.ErrUnsupported }
func (l *Lib) Dispatch(w wvcb.Window, fn uintptr, arg unsafe.Pointer) error { return wvcb.ErrUnsupported }
func (l *Lib) Bind(w wvcb.Window, name string, fn uintptr, arg unsafe.Pointer) error {
	return wvcb.ErrUnsupported
}
func (l *Lib) Unbind(w wvcb.Window, name string) error { return wvcb.ErrUnsupported }
func (l *Lib) Return(w wvcb.Window, id string, status int, result string) error {
	return wvcb.ErrUnsupported
}
