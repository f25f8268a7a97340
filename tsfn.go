package wvcb

import (
	"reflect"
	"sync"
)

type callData struct {
	uid   uint32
	argId uint32
	id    string
	req   string
	w     Window
}

// threadsafeFunc marshals calls from any goroutine or native thread onto the
// loop. Each call blocks its caller until the loop has delivered it, or until
// the function is aborted.
type threadsafeFunc struct {
	loop *Loop
	call func(fn reflect.Value, data *callData)

	mu      sync.Mutex
	fn      reflect.Value
	aborted bool
	waiting map[*task]struct{}
}

func newThreadsafeFunc(loop *Loop, fn reflect.Value, call func(reflect.Value, *callData)) *threadsafeFunc {
	return &threadsafeFunc{
		loop:    loop,
		call:    call,
		fn:      fn,
		waiting: make(map[*task]struct{}),
	}
}

func (f *threadsafeFunc) BlockingCall(data *callData) error {
	f.mu.Lock()
	if f.aborted {
		f.mu.Unlock()
		return ErrAborted
	}
	fn := f.fn
	t := newTask(func() { f.call(fn, data) })
	t.owner = f
	f.waiting[t] = struct{}{}
	f.mu.Unlock()

	if err := f.loop.enqueue(t); err != nil {
		f.forget(t)
		return err
	}
	return t.wait()
}

// Abort fails every call that has not started yet and every future call with
// ErrAborted. A call the loop is already running completes normally.
func (f *threadsafeFunc) Abort() {
	f.mu.Lock()
	if f.aborted {
		f.mu.Unlock()
		return
	}
	f.aborted = true
	f.fn = reflect.Value{}
	waiting := f.waiting
	f.waiting = nil
	f.mu.Unlock()

	for t := range waiting {
		t.abort()
	}
}

func (f *threadsafeFunc) IsAborted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aborted
}

func (f *threadsafeFunc) forget(t *task) {
	f.mu.Lock()
	delete(f.waiting, t)
	f.mu.Unlock()
}
