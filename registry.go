package wvcb

import (
	xsync "github.com/puzpuzpuz/xsync/v2"
)

// _Registry maps callback uids to live handles. It never owns a handle:
// entries are inserted by NewHandle and erased by Handle.Destroy.
type _Registry struct {
	uid2handle map[uint32]*Handle
	nextUid    uint32
	mu         *xsync.RBMutex
}

func newRegistry() *_Registry {
	return &_Registry{
		uid2handle: make(map[uint32]*Handle),
		mu:         xsync.NewRBMutex(),
	}
}

func (r *_Registry) add(h *Handle) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	uid := r.nextUid
	r.nextUid++
	h.uid = uid
	r.uid2handle[uid] = h
	return uid
}

func (r *_Registry) remove(uid uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.uid2handle, uid)
}

func (r *_Registry) lookup(uid uint32) *Handle {
	rtok := r.mu.RLock()
	defer r.mu.RUnlock(rtok)
	return r.uid2handle[uid]
}

func (r *_Registry) len() int {
	rtok := r.mu.RLock()
	defer r.mu.RUnlock(rtok)
	return len(r.uid2handle)
}

func (r *_Registry) snapshot() []*Handle {
	rtok := r.mu.RLock()
	defer r.mu.RUnlock(rtok)
	handles := make([]*Handle, 0, len(r.uid2handle))
	for _, h := range r.uid2handle {
		handles = append(handles, h)
	}
	return handles
}
