package keepalive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHolderAcquireRelease(t *testing.T) {
	h := New(7)
	var ids []uint32
	for i := 0; i < 3; i++ {
		argId, ptr, err := h.Acquire()
		if err != nil {
			t.Fatal(err)
		}
		if got := *(*[2]uint32)(ptr); got != [2]uint32{7, argId} {
			t.Errorf("buffer = %v", got)
		}
		ids = append(ids, argId)
	}
	if diff := cmp.Diff([]uint32{0, 1, 2}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}

	if !h.Release(1) {
		t.Error("Release(1) = false")
	}
	if h.Release(1) {
		t.Error("second Release(1) = true")
	}
	argId, _, _ := h.Acquire()
	if argId != 1 {
		t.Errorf("smallest free id not reused: got %d", argId)
	}
	if h.Len() != 3 {
		t.Errorf("Len = %d", h.Len())
	}

	h.Free()
	if h.Len() != 0 {
		t.Errorf("Len after Free = %d", h.Len())
	}
	if argId, _, _ := h.Acquire(); argId != 0 {
		t.Errorf("first id after Free = %d", argId)
	}
}
