package wvcb

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	taskQueued uint32 = iota
	taskRunning
	taskAborted
	taskDone
)

type task struct {
	run   func()
	state atomic.Uint32
	done  chan struct{}
	owner *threadsafeFunc
}

func newTask(run func()) *task {
	return &task{run: run, done: make(chan struct{})}
}

func (t *task) abort() bool {
	if !t.state.CompareAndSwap(taskQueued, taskAborted) {
		return false
	}
	close(t.done)
	if t.owner != nil {
		t.owner.forget(t)
	}
	return true
}

func (t *task) wait() error {
	<-t.done
	if t.state.Load() == taskAborted {
		return ErrAborted
	}
	return nil
}

// Loop is the runtime thread. Queued work runs one task at a time, in
// enqueue order, on a goroutine locked to its OS thread. The queue is
// unbounded: nothing slows down producers when the loop stalls.
type Loop struct {
	mu      sync.Mutex
	queue   []*task
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool

	logger  *zap.Logger
	onError func(error)
}

func NewLoop(opts ...Option) *Loop {
	o := buildOptions(opts)
	return &Loop{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  o.logger,
		onError: o.onError,
	}
}

// Run processes the queue on the calling goroutine until Close is called.
func (l *Loop) Run() {
	if !l.running.CompareAndSwap(false, true) {
		panic("wvcb: loop is already running")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)

	for {
		t, ok := l.next()
		if !ok {
			return
		}
		l.exec(t)
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start() *Loop {
	go l.Run()
	return l
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops the loop after the task currently running. Tasks still queued
// are aborted, releasing whoever waits on them.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, t := range pending {
		t.abort()
	}
	l.signal()
	if n := len(pending); n > 0 {
		l.logger.Debug("loop closed with queued calls", zap.Int("aborted", n))
	}
}

// Post queues fn without waiting for it.
func (l *Loop) Post(fn func()) error {
	return l.enqueue(newTask(fn))
}

// Do queues fn and blocks until it has run. Calling Do from the loop itself
// deadlocks.
func (l *Loop) Do(fn func()) error {
	t := newTask(fn)
	if err := l.enqueue(t); err != nil {
		return err
	}
	if err := t.wait(); err != nil {
		return ErrLoopClosed
	}
	return nil
}

// ReportError is the uncaught-error path of the runtime.
func (l *Loop) ReportError(err error) {
	if err == nil {
		return
	}
	if l.onError != nil {
		l.onError(err)
		return
	}
	l.logger.Error("uncaught error in callback", zap.Error(err))
}

func (l *Loop) enqueue(t *task) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, t)
	l.mu.Unlock()
	l.signal()
	return nil
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) next() (*task, bool) {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			t := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()
			return t, true
		}
		if l.closed {
			l.mu.Unlock()
			return nil, false
		}
		l.mu.Unlock()
		<-l.wake
	}
}

func (l *Loop) exec(t *task) {
	if !t.state.CompareAndSwap(taskQueued, taskRunning) {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			l.ReportError(fmt.Errorf("wvcb: panic on loop: %v", p))
		}
		t.state.Store(taskDone)
		close(t.done)
		if t.owner != nil {
			t.owner.forget(t)
		}
	}()
	t.run()
}
