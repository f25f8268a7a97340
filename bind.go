package wvcb

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Returner answers a bound call, the way webview_return does.
type Returner interface {
	Return(w Window, id string, status int, result string) error
}

// WrapBind adapts fn to the bind shape. The request is a JSON array whose
// elements become fn's leading arguments; the bound argument is appended
// last. A result is answered JSON-encoded with status 0, an error or panic
// with status 1 and the JSON-encoded message.
func WrapBind(w Window, fn any, ret Returner) func(id, req string, arg any) error {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		panic(fmt.Sprintf("wvcb: bound callback must be a function, got %T", fn))
	}
	return func(id, req string, arg any) error {
		result, err := callBound(fnV, req, arg)
		if err != nil {
			msg, _ := json.Marshal(err.Error())
			return ret.Return(w, id, 1, string(msg))
		}
		return ret.Return(w, id, 0, result)
	}
}

func callBound(fn reflect.Value, req string, arg any) (result string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	var params []any
	if req != "" {
		if err := json.Unmarshal([]byte(req), &params); err != nil {
			return "", fmt.Errorf("decoding bind request: %w", err)
		}
	}
	out, err := callFunc(fn, append(params, arg))
	if err != nil || out == nil {
		return "", err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding bind result: %w", err)
	}
	return string(b), nil
}
