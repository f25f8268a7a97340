// Package keepalive allocates argument ids for a callback and keeps the
// [uid, argId] buffers handed to native code pinned until they are released.
package keepalive

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"unsafe"

	"github.com/bits-and-blooms/bitset"
)

var ErrExhausted = errors.New("keepalive: argument ids exhausted")

type slot struct {
	ids    [2]uint32
	pinner runtime.Pinner
}

var pool = sync.Pool{
	New: func() any { return new(slot) },
}

type Holder struct {
	uid   uint32
	mu    sync.Mutex
	used  *bitset.BitSet
	slots map[uint32]*slot
}

func New(uid uint32) *Holder {
	return &Holder{
		uid:   uid,
		used:  bitset.New(0),
		slots: make(map[uint32]*slot),
	}
}

func (h *Holder) Uid() uint32 { return h.uid }

// Acquire reserves the smallest free argument id and returns a pointer to a
// pinned [uid, argId] pair that native code may hold until Release.
func (h *Holder) Acquire() (argId uint32, ptr unsafe.Pointer, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	av, ok := h.used.NextClear(0)
	if !ok {
		av = h.used.Len()
	}
	if av > math.MaxUint32 {
		return 0, nil, ErrExhausted
	}
	h.used.Set(av)
	argId = uint32(av)

	s := pool.Get().(*slot)
	s.ids = [2]uint32{h.uid, argId}
	s.pinner.Pin(s)
	h.slots[argId] = s
	return argId, unsafe.Pointer(&s.ids), nil
}

// Release unpins the buffer of argId and makes the id available again.
func (h *Holder) Release(argId uint32) bool {
	h.mu.Lock()
	s, ok := h.slots[argId]
	if ok {
		delete(h.slots, argId)
		h.used.Clear(uint(argId))
	}
	h.mu.Unlock()

	if ok {
		s.recycle()
	}
	return ok
}

func (h *Holder) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.slots)
}

// Free releases every outstanding buffer.
func (h *Holder) Free() {
	h.mu.Lock()
	slots := h.slots
	h.slots = make(map[uint32]*slot)
	h.used.ClearAll()
	h.mu.Unlock()

	for _, s := range slots {
		s.recycle()
	}
}

func (s *slot) recycle() {
	s.pinner.Unpin()
	s.ids = [2]uint32{}
	pool.Put(s)
}
