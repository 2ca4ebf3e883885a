// recover.go provides the Recover helper for panics outside a request scope.

package apm

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Recover captures a panic, records it to the collector, and returns the
// recovered value. It does not re-panic.
//
// Use in defer:
//
//	func worker(ctx context.Context) {
//	    defer apm.Recover(ctx, collector)
//	    // code that might panic
//	}
func Recover(ctx context.Context, collector Collector) any {
	r := recover()
	if r == nil {
		return nil
	}

	_ = collector.Record(ctx, PanicEvent(ctx, r, debug.Stack()))
	return r
}

// PanicEvent builds the crash event of a recovered panic value.
func PanicEvent(ctx context.Context, recovered any, stack []byte) ErrorEvent {
	event := ErrorEvent{
		Severity:   SeverityCrash,
		ErrorType:  ErrorTypePanic,
		Message:    FormatRecovered(recovered),
		StackTrace: string(stack),
	}
	if requestID, ok := RequestIDFromContext(ctx); ok {
		event.RequestID = requestID
	}
	if contextID, ok := ContextIDFromContext(ctx); ok {
		event.ContextID = &contextID
	}
	return event
}

// FormatRecovered formats a recovered panic value as a string.
func FormatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
