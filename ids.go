package wvcb

import "unsafe"

// Window is the opaque webview_t handle of the native library.
type Window uintptr

// CallIds is the memory layout behind the opaque argument pointer native code
// passes back to the entry points: the callback uid followed by the argument
// id. Whoever hands the pointer to native code owns the memory; the entry
// points only read it.
type CallIds [2]uint32

func (ids *CallIds) Uid() uint32             { return ids[0] }
func (ids *CallIds) ArgId() uint32           { return ids[1] }
func (ids *CallIds) Pointer() unsafe.Pointer { return unsafe.Pointer(ids) }

func decodeIds(arg unsafe.Pointer) (uid uint32, argId uint32) {
	ids := (*CallIds)(arg)
	return ids[0], ids[1]
}
