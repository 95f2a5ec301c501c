package errors

import (
	"errors"
	"reflect"
	"runtime"

	errorsGo "github.com/go-errors/errors"
)

var ErrUnsupported = errors.ErrUnsupported

func As(err error, target any) bool { return errorsGo.As(err, target) }

func Is(err, target error) bool { return errorsGo.Is(err, target) }

func New(obj any) *Error {
	// return nil for nil unlike github.com/go-errors/errors.New()
	if obj == nil {
		return nil
	}
	// keep the stack of the first wrap
	if errGo, okErrGo := obj.(*errorsGo.Error); okErrGo {
		return errGo
	}
	return errorsGo.Wrap(obj, 1)
}

func Unwrap(err error) error { return errorsGo.Unwrap(err) }

type Error = errorsGo.Error

func Errorf(format string, a ...interface{}) *Error { return errorsGo.Errorf(format, a...) }

func Wrap(e interface{}, skip int) *Error { return errorsGo.Wrap(e, skip+1) }

func WrapPrefix(e interface{}, prefix string, skip int) *Error {
	return errorsGo.WrapPrefix(e, prefix, skip+1)
}

// Recovered turns a value obtained from recover() into an error that carries
// the stack of the panicking goroutine. A nil value yields nil.
func Recovered(r any, prefix string) error {
	if r == nil {
		return nil
	}
	if len(prefix) == 0 {
		return errorsGo.Wrap(r, 2)
	}
	return errorsGo.WrapPrefix(r, prefix, 2)
}

// NilReceiver returns an error with the function name if any of the arguments
// are nil. Without arguments it always returns the error.
func NilReceiver(args ...any) error {
	return errMsgNilTester(`nil receiver or struct field`, 3, args...)
}

// NilParam returns an error with the function name if any of the arguments are nil
func NilParam(args ...any) error {
	return errMsgNilTester(`nil parameter`, 3, args...)
}

func errMsgNilTester(msg string, skip int, args ...any) error {
	if len(args) == 0 {
		return errMsg(msg, skip)
	}
	for i := range args {
		if isNil(args[i]) {
			return errMsg(msg, skip)
		}
	}
	return nil
}

// isNil also catches typed nil pointers stored in interfaces
func isNil(arg any) bool {
	if arg == nil {
		return true
	}
	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func errMsg(msg string, skip int) error {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return Wrap(msg, skip)
	}
	return Wrap(msg+`: `+runtime.FuncForPC(pc).Name()+`()`, skip)
}
