package wvcb

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handle is one registered callback. Native code reaches it through its uid;
// the registry holds it only while it is not closed.
//
// Destroy may be called at any time, from any goroutine, including from the
// registered function itself. When dispatch arguments are still pending the
// teardown is deferred until the last of them has been delivered.
type Handle struct {
	uid    uint32
	kind   atomic.Uint32
	status atomic.Uint32
	tr     *Trampoline

	mu        sync.Mutex
	pending   uint32
	args      map[uint32]any
	tsfn      *threadsafeFunc
	onRelease func(argId uint32)
}

// NewHandle registers fn. Its parameters receive (Window, arg) when the handle
// is used for dispatch and (id, req string, arg) when used for bind.
func (t *Trampoline) NewHandle(fn any) *Handle {
	return t.newHandle(fn, nil)
}

func (t *Trampoline) newHandle(fn any, onRelease func(uint32)) *Handle {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		panic(fmt.Sprintf("wvcb: callback must be a function, got %T", fn))
	}
	h := &Handle{
		tr:        t,
		args:      make(map[uint32]any),
		onRelease: onRelease,
	}
	h.tsfn = newThreadsafeFunc(t.loop, fnV, t.deliver)
	t.registry.add(h)
	return h
}

func (h *Handle) Uid() uint32        { return h.uid }
func (h *Handle) Kind() CallbackKind { return CallbackKind(h.kind.Load()) }
func (h *Handle) Status() Status     { return Status(h.status.Load()) }

func (h *Handle) String() string {
	return fmt.Sprintf("Handle[uid=%d, kind=%s, status=%s]", h.uid, h.Kind(), h.Status())
}

// DispatchPtr marks the handle as a dispatch callback and returns the native
// entry to pass to webview_dispatch. Requesting BindPtr afterwards turns the
// handle into a bind callback; a handle serves one shape at a time.
func (h *Handle) DispatchPtr() uintptr {
	h.setKind(CK_DISPATCH)
	return h.tr.nativeDispatchPtr()
}

// BindPtr marks the handle as a bind callback and returns the native entry to
// pass to webview_bind.
func (h *Handle) BindPtr() uintptr {
	h.setKind(CK_BIND)
	return h.tr.nativeBindPtr()
}

func (h *Handle) setKind(kind CallbackKind) { h.kind.Store(uint32(kind)) }

func (h *Handle) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int(h.pending)
}

func (h *Handle) NumArgs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.args)
}

// StageArg stores v under argId. It must happen before the native call that
// carries argId reaches the trampoline. An id that is already staged is
// overwritten.
func (h *Handle) StageArg(v any, argId uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.Status().IsOpen() {
		return fmt.Errorf("staging argument %d on %s: %w", argId, h, ErrClosed)
	}
	_, exists := h.args[argId]
	h.args[argId] = v
	if !exists && h.Kind().IsDispatch() {
		h.pending++
	}
	return nil
}

func (h *Handle) fetchArg(argId uint32) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.args[argId]
	if !ok {
		return nil, fmt.Errorf("fetching argument %d on %s: %w", argId, h, ErrArgNotFound)
	}
	return v, nil
}

func (h *Handle) releaseArg(argId uint32) error {
	h.mu.Lock()
	if _, ok := h.args[argId]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("releasing argument %d on %s: %w", argId, h, ErrArgNotFound)
	}
	delete(h.args, argId)
	hook := h.onRelease
	h.mu.Unlock()

	if hook != nil {
		hook(argId)
	}
	return nil
}

// settle runs after a dispatch argument was delivered and released.
func (h *Handle) settle() {
	h.mu.Lock()
	if h.pending > 0 {
		h.pending--
	}
	finish := h.Status().IsDeferred() && h.pending == 0
	h.mu.Unlock()

	if finish {
		h.Destroy(false)
	}
}

// Destroy closes the handle. Without isShutdown, a handle with pending
// dispatch arguments only moves to the deferred state and closes once they
// drain. With isShutdown it closes immediately and every native caller still
// blocked on it returns without delivery.
func (h *Handle) Destroy(isShutdown bool) {
	h.mu.Lock()
	status := h.Status()
	if status.IsClosed() {
		h.mu.Unlock()
		return
	}
	if !isShutdown && status != cbClosing && h.pending > 0 {
		h.status.Store(uint32(cbDeferred))
		h.mu.Unlock()
		return
	}

	h.status.Store(uint32(cbClosing))
	h.tsfn.Abort()
	released := make([]uint32, 0, len(h.args))
	for argId := range h.args {
		released = append(released, argId)
	}
	clear(h.args)
	h.pending = 0
	h.tr.registry.remove(h.uid)
	h.status.Store(uint32(cbClosed))
	hook := h.onRelease
	h.mu.Unlock()

	if hook != nil {
		for _, argId := range released {
			hook(argId)
		}
	}
}
