package wvcb

import (
	"fmt"
	"reflect"
	"unsafe"

	xsync "github.com/puzpuzpuz/xsync/v2"
	"go.uber.org/zap"
)

// Trampoline routes native callback invocations to their handles. It owns the
// registry of live handles and the two native entry points shared by all of
// them.
type Trampoline struct {
	loop     *Loop
	registry *_Registry
	logger   *zap.Logger
	native   nativeEntries

	marshaled *xsync.Counter
	delivered *xsync.Counter
	dropped   *xsync.Counter
	aborted   *xsync.Counter
	failed    *xsync.Counter
}

func New(loop *Loop, opts ...Option) *Trampoline {
	o := buildOptions(opts)
	return &Trampoline{
		loop:      loop,
		registry:  newRegistry(),
		logger:    o.logger,
		marshaled: xsync.NewCounter(),
		delivered: xsync.NewCounter(),
		dropped:   xsync.NewCounter(),
		aborted:   xsync.NewCounter(),
		failed:    xsync.NewCounter(),
	}
}

func (t *Trampoline) Loop() *Loop { return t.loop }

// DispatchEntry has the shape of a webview_dispatch callback:
// void (*)(webview_t w, void *arg).
func (t *Trampoline) DispatchEntry(w Window, arg unsafe.Pointer) {
	tsfn, uid, argId, ok := t.accept(arg)
	if !ok {
		return
	}
	t.marshal(tsfn, &callData{uid: uid, argId: argId, w: w})
}

// BindEntry has the shape of a webview_bind callback:
// void (*)(const char *id, const char *req, void *arg).
func (t *Trampoline) BindEntry(id, req string, arg unsafe.Pointer) {
	tsfn, uid, argId, ok := t.accept(arg)
	if !ok {
		return
	}
	t.marshal(tsfn, &callData{uid: uid, argId: argId, id: id, req: req})
}

// Shutdown closes every live handle immediately, releasing all native callers
// blocked on them.
func (t *Trampoline) Shutdown() {
	for _, h := range t.registry.snapshot() {
		h.Destroy(true)
	}
}

// accept drops calls whose argument pointer is nil or names a handle that is
// gone. Native callers have nowhere to receive an error, so the drop is only
// counted.
func (t *Trampoline) accept(arg unsafe.Pointer) (tsfn *threadsafeFunc, uid uint32, argId uint32, ok bool) {
	if arg == nil {
		t.drop("nil argument", 0, 0)
		return
	}
	uid, argId = decodeIds(arg)

	rtok := t.registry.mu.RLock()
	if h := t.registry.uid2handle[uid]; h != nil && !h.Status().IsClosed() {
		tsfn = h.tsfn
	}
	t.registry.mu.RUnlock(rtok)

	if tsfn == nil {
		t.drop("no live handle", uid, argId)
		return
	}
	return tsfn, uid, argId, true
}

func (t *Trampoline) marshal(tsfn *threadsafeFunc, data *callData) {
	t.marshaled.Inc()
	if err := tsfn.BlockingCall(data); err != nil {
		t.aborted.Inc()
		t.logger.Debug("call not delivered",
			zap.Uint32("uid", data.uid),
			zap.Uint32("argId", data.argId),
			zap.Error(err))
	}
}

func (t *Trampoline) drop(reason string, uid, argId uint32) {
	t.dropped.Inc()
	t.logger.Debug("call dropped",
		zap.String("reason", reason),
		zap.Uint32("uid", uid),
		zap.Uint32("argId", argId))
}

func (t *Trampoline) resolve(uid uint32) *Handle {
	return t.registry.lookup(uid)
}

// deliver runs on the loop for every marshaled call.
func (t *Trampoline) deliver(fn reflect.Value, data *callData) {
	h := t.resolve(data.uid)
	if h == nil {
		t.drop("handle gone before delivery", data.uid, data.argId)
		return
	}
	arg, err := h.fetchArg(data.argId)
	if err != nil {
		if h.Status().IsClosed() {
			t.drop("handle closed before delivery", data.uid, data.argId)
			return
		}
		t.failed.Inc()
		t.loop.ReportError(&CallbackError{Uid: data.uid, Kind: h.Kind(), Err: err})
		return
	}

	switch kind := h.Kind(); kind {
	case CK_DISPATCH:
		t.invoke(fn, h.uid, kind, data.w, arg)
		if h.Status().IsClosed() {
			break
		}
		if h.releaseArg(data.argId) == nil {
			h.settle()
		}
	case CK_BIND:
		t.invoke(fn, h.uid, kind, data.id, data.req, arg)
	default:
		t.drop("callback kind not set", data.uid, data.argId)
		return
	}
	t.delivered.Inc()
}

func (t *Trampoline) invoke(fn reflect.Value, uid uint32, kind CallbackKind, args ...any) {
	defer func() {
		if p := recover(); p != nil {
			t.failed.Inc()
			t.loop.ReportError(&CallbackError{Uid: uid, Kind: kind, Err: fmt.Errorf("panic: %v", p)})
		}
	}()
	if _, err := callFunc(fn, args); err != nil {
		t.failed.Inc()
		t.loop.ReportError(&CallbackError{Uid: uid, Kind: kind, Err: err})
	}
}

type Stats struct {
	Live      int
	Marshaled int64
	Delivered int64
	Dropped   int64
	Aborted   int64
	Failed    int64
}

func (t *Trampoline) Stats() Stats {
	return Stats{
		Live:      t.registry.len(),
		Marshaled: t.marshaled.Value(),
		Delivered: t.delivered.Value(),
		Dropped:   t.dropped.Value(),
		Aborted:   t.aborted.Value(),
		Failed:    t.failed.Value(),
	}
}
