package wvcb

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := newTestLoop(t)
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		if err := l.Post(func() { got = append(got, i) }); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Do(func() {}); err != nil {
		t.Fatal(err)
	}
	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestLoopCloseAbortsQueued(t *testing.T) {
	l := NewLoop().Start()
	release := blockLoop(t, l)

	ran := 0
	errs := make([]error, 3)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.Do(func() { ran++ })
		}(i)
	}
	waitFor(t, "queued calls", func() bool { return l.Len() == 3 })

	l.Close()
	wg.Wait()
	release()
	<-l.Done()

	for i, err := range errs {
		if !errors.Is(err, ErrLoopClosed) {
			t.Errorf("Do #%d: %v", i, err)
		}
	}
	if ran != 0 {
		t.Errorf("%d aborted tasks ran", ran)
	}
	if err := l.Post(func() {}); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Post after Close: %v", err)
	}
}

func TestLoopReportsPanics(t *testing.T) {
	errs := make(chan error, 1)
	l := newTestLoop(t, WithErrorHandler(func(err error) { errs <- err }))
	if err := l.Post(func() { panic("kaboom") }); err != nil {
		t.Fatal(err)
	}
	if err := <-errs; err == nil {
		t.Error("expected a reported error")
	}
	if err := l.Do(func() {}); err != nil {
		t.Errorf("loop stopped after a panic: %v", err)
	}
}

func TestLoopRunTwice(t *testing.T) {
	l := newTestLoop(t)
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	// Do makes sure the first Run has started.
	if err := l.Do(func() {}); err != nil {
		t.Fatal(err)
	}
	l.Run()
}
