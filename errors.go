package wvcb

import "errors"

var (
	// ErrArgNotFound is returned when an argument id was never staged or has
	// already been released.
	ErrArgNotFound = errors.New("wvcb: argument not found")
	// ErrAborted is returned by a blocking call whose channel was aborted
	// before the call was delivered.
	ErrAborted     = errors.New("wvcb: call aborted")
	ErrLoopClosed  = errors.New("wvcb: loop closed")
	ErrClosed      = errors.New("wvcb: callback closed")
	ErrUnsupported = errors.New("wvcb: native callbacks unsupported on this platform")
)
