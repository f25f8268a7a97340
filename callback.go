package wvcb

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/hsfzxjy/wvcb/keepalive"
	"go.uber.org/zap"
)

// ArgRef is what native code needs to invoke a callback with one staged
// argument: Ptr goes into the void *arg slot of webview_dispatch or
// webview_bind.
type ArgRef struct {
	Uid   uint32
	ArgId uint32
	Ptr   unsafe.Pointer
}

// Callback is a Handle wired to one native callback shape, with argument ids
// and native-visible buffers managed for the caller.
type Callback struct {
	h      *Handle
	kind   CallbackKind
	ptr    uintptr
	args   *keepalive.Holder
	closed atomic.Bool
	logger *zap.Logger
}

// Dispatch registers fn as a webview_dispatch callback. fn is called on the
// loop with the window and the argument staged by Arg.
func (t *Trampoline) Dispatch(fn any) *Callback {
	return t.newCallback(CK_DISPATCH, fn)
}

// Bind registers fn as a webview_bind callback for window w. See WrapBind for
// how fn is called and how its result reaches the page.
func (t *Trampoline) Bind(w Window, fn any, ret Returner) *Callback {
	return t.newCallback(CK_BIND, WrapBind(w, fn, ret))
}

func (t *Trampoline) newCallback(kind CallbackKind, fn any) *Callback {
	c := &Callback{kind: kind, logger: t.logger}
	c.h = t.newHandle(fn, func(argId uint32) { c.args.Release(argId) })
	c.args = keepalive.New(c.h.Uid())
	switch kind {
	case CK_DISPATCH:
		c.ptr = c.h.DispatchPtr()
	case CK_BIND:
		c.ptr = c.h.BindPtr()
	}
	return c
}

func (c *Callback) Uid() uint32        { return c.h.Uid() }
func (c *Callback) Kind() CallbackKind { return c.kind }
func (c *Callback) Handle() *Handle    { return c.h }

// IsClosed reports whether Close was called or the trampoline was shut down.
func (c *Callback) IsClosed() bool {
	return c.closed.Load() || c.h.Status().IsClosed()
}

// Ptr is the native entry to register with the webview library, 0 once the
// callback is closed.
func (c *Callback) Ptr() uintptr {
	if c.IsClosed() {
		return 0
	}
	return c.ptr
}

// Arg stages v under a fresh argument id. A bind callback normally stages one
// argument at registration time and reuses it for every call.
func (c *Callback) Arg(v any) (ArgRef, error) {
	if c.IsClosed() {
		c.logger.Warn("callback argument requested after close", zap.Uint32("uid", c.Uid()))
		return ArgRef{Uid: c.Uid()}, fmt.Errorf("callback %d: %w", c.Uid(), ErrClosed)
	}
	argId, ptr, err := c.args.Acquire()
	if err != nil {
		return ArgRef{Uid: c.Uid()}, fmt.Errorf("callback %d: %w", c.Uid(), err)
	}
	if err := c.h.StageArg(v, argId); err != nil {
		c.args.Release(argId)
		return ArgRef{Uid: c.Uid()}, err
	}
	return ArgRef{Uid: c.Uid(), ArgId: argId, Ptr: ptr}, nil
}

// Close destroys the underlying handle; see Handle.Destroy. Calling it more
// than once has no effect.
func (c *Callback) Close(isShutdown bool) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.h.Destroy(isShutdown)
}
