package wvcb

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// CallbackError carries a failure of a registered function to the loop's
// error handler.
type CallbackError struct {
	Uid  uint32
	Kind CallbackKind
	Err  error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("wvcb: %s callback %d: %v", e.Kind, e.Uid, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// callFunc calls fn the way a script function is called: surplus values are
// dropped, missing ones become zero values and convertible values are
// converted to the parameter type.
func callFunc(fn reflect.Value, args []any) (result any, err error) {
	ft := fn.Type()
	outs := fn.Call(callArgs(ft, args))
	if n := ft.NumOut(); n > 0 && ft.Out(n-1) == errorType {
		if e := outs[n-1].Interface(); e != nil {
			err = e.(error)
		}
		outs = outs[:n-1]
	}
	if len(outs) > 0 {
		result = outs[0].Interface()
	}
	return
}

func callArgs(ft reflect.Type, args []any) []reflect.Value {
	n := ft.NumIn()
	variadic := ft.IsVariadic()
	count := n
	switch {
	case variadic && len(args) >= n-1:
		count = len(args)
	case variadic:
		count = n - 1
	}

	values := make([]reflect.Value, count)
	for i := range values {
		var pt reflect.Type
		if variadic && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		values[i] = convertArg(arg, pt)
	}
	return values
}

func convertArg(arg any, pt reflect.Type) reflect.Value {
	if arg == nil {
		return reflect.Zero(pt)
	}
	v := reflect.ValueOf(arg)
	vt := v.Type()
	switch {
	case vt.AssignableTo(pt):
		return v
	case pt.Kind() == reflect.String && vt.Kind() != reflect.String:
		// int -> string conversions produce runes; leave the mismatch to Call
	case vt.ConvertibleTo(pt):
		return v.Convert(pt)
	}
	return v
}
