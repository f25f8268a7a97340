package wvcb

type CallbackKind uint32

const (
	CK_UNKNOWN CallbackKind = iota
	CK_DISPATCH
	CK_BIND
)

func (k CallbackKind) IsDispatch() bool { return k == CK_DISPATCH }
func (k CallbackKind) IsBind() bool     { return k == CK_BIND }

func (k CallbackKind) String() string {
	switch k {
	case CK_DISPATCH:
		return "dispatch"
	case CK_BIND:
		return "bind"
	default:
		return "unknown"
	}
}

type Status uint32

const (
	cbOpen Status = iota
	cbClosing
	cbDeferred
	cbClosed
)

func (s Status) IsOpen() bool     { return s == cbOpen }
func (s Status) IsDeferred() bool { return s == cbDeferred }
func (s Status) IsClosed() bool   { return s == cbClosed }

func (s Status) String() string {
	switch s {
	case cbOpen:
		return "open"
	case cbClosing:
		return "closing"
	case cbDeferred:
		return "deferred"
	case cbClosed:
		return "closed"
	default:
		return "invalid"
	}
}
