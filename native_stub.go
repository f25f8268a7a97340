//go:build !(!ios && !android && (amd64 || arm64) && (darwin || linux))

package wvcb

type nativeEntries struct{}

func NativeSupported() bool { return false }

func (t *Trampoline) nativeDispatchPtr() uintptr { return 0 }
func (t *Trampoline) nativeBindPtr() uintptr     { return 0 }
