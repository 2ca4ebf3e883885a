package hooking

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageSealed is returned when hooks are inserted after setup ended.
	ErrStorageSealed = errors.New("hooking: hook storage is sealed")

	// ErrAlreadyRegistered is returned by Module.Register after the first call.
	ErrAlreadyRegistered = errors.New("hooking: error callback already registered")

	// ErrEngineShutdown is the outcome error of calls still pending when the
	// engine shut down.
	ErrEngineShutdown = errors.New("hooking: call aborted by engine shutdown")
)

// CallError marks an error that left an instrumented call. Its post-hooks
// already observed it, so boundary capture should not report it again.
// Error() is the wrapped error's text unchanged.
type CallError struct {
	Key      FunctionKey
	Class    string
	Function string
	Err      error
}

func (e *CallError) Error() string {
	return e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// ObservedByHook reports whether err passed through an instrumented call.
func ObservedByHook(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr)
}

// PanicError carries a value recovered from a panicking call.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
