// Package jsrt hosts a QuickJS VM on a wvcb.Loop so that script functions
// can serve as dispatch and bind callbacks.
package jsrt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/hsfzxjy/wvcb"
	"go.uber.org/zap"
	"modernc.org/quickjs"
)

var ErrClosed = errors.New("jsrt: runtime closed")

// Runtime owns a VM that is only ever touched from its loop. Methods named
// without the Local suffix post to the loop and block, so they must not be
// called from a function already running on it.
type Runtime struct {
	loop   *wvcb.Loop
	vm     *quickjs.VM
	closed atomic.Bool
	logger *zap.Logger
}

func New(loop *wvcb.Loop) (*Runtime, error) {
	r := &Runtime{loop: loop, logger: wvcb.Logger().Named("jsrt")}
	var err error
	if derr := loop.Do(func() { r.vm, err = quickjs.NewVM() }); derr != nil {
		return nil, derr
	}
	if err != nil {
		return nil, fmt.Errorf("creating QuickJS VM: %w", err)
	}
	if r.vm == nil {
		return nil, errors.New("jsrt: VM creation panicked")
	}
	return r, nil
}

// Eval runs src in global scope and returns its completion value converted to
// Go.
func (r *Runtime) Eval(src string) (result any, err error) {
	if derr := r.loop.Do(func() { result, err = r.EvalLocal(src) }); derr != nil {
		return nil, derr
	}
	return
}

func (r *Runtime) EvalLocal(src string) (any, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.vm.Eval(src, quickjs.EvalGlobal)
}

// Register exposes a Go function to scripts as a global.
func (r *Runtime) Register(name string, fn any) (err error) {
	if derr := r.loop.Do(func() {
		if r.closed.Load() {
			err = ErrClosed
			return
		}
		err = r.vm.RegisterFunc(name, fn, false)
	}); derr != nil {
		return derr
	}
	return
}

// CallLocal calls the global function name with JSON-encodable args. The
// return value crosses back as JSON, so objects arrive as maps and numbers as
// float64; undefined becomes nil.
func (r *Runtime) CallLocal(name string, args ...any) (any, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encoding argument %d of %s: %w", i, name, err)
		}
		parts[i] = string(b)
	}
	src := fmt.Sprintf(callTemplate, name, strings.Join(parts, ","))
	v, err := r.EvalLocal(src)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", name, err)
	}
	s, _ := v.(string)
	if s == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decoding result of %s: %w", name, err)
	}
	return out, nil
}

const callTemplate = `(function () {
	var r = globalThis[%q](%s);
	return r === undefined ? "" : JSON.stringify(r);
})()`

// Func returns a dispatch callback that calls the global function name with
// the window and the staged argument.
func (r *Runtime) Func(name string) func(w wvcb.Window, arg any) error {
	return func(w wvcb.Window, arg any) error {
		_, err := r.CallLocal(name, uintptr(w), arg)
		return err
	}
}

// BindFunc returns a function for Trampoline.Bind that forwards the request
// parameters and the bound argument to the global function name. Its
// completion value becomes the bind result.
func (r *Runtime) BindFunc(name string) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		return r.CallLocal(name, args...)
	}
}

func (r *Runtime) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := r.loop.Do(func() { r.vm.Close() })
	if err != nil {
		r.logger.Warn("VM not closed on its loop", zap.Error(err))
	}
	return err
}
