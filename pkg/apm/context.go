// context.go propagates request IDs and cxdb context IDs through
// context.Context.

package apm

import "context"

type requestIDKey struct{}
type contextIDKey struct{}

// contextIDSet distinguishes "zero value" from "not set".
type contextIDSet struct {
	id uint64
}

// WithRequestID returns a context with the request ID attached.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request ID from context.
// Returns empty string and false if not set or if the request ID is empty.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// WithContextID returns a context with the cxdb context ID attached.
// This allows errors to be linked to conversation context.
func WithContextID(ctx context.Context, contextID uint64) context.Context {
	return context.WithValue(ctx, contextIDKey{}, contextIDSet{id: contextID})
}

// ContextIDFromContext extracts the cxdb context ID from context.
// Returns 0 and false if not set.
func ContextIDFromContext(ctx context.Context) (uint64, bool) {
	set, ok := ctx.Value(contextIDKey{}).(contextIDSet)
	if !ok {
		return 0, false
	}
	return set.id, true
}

// ContextIDProvider is an optional interface that session implementations can
// satisfy to enable automatic context linkage for error events.
type ContextIDProvider interface {
	ContextID(ctx context.Context) (uint64, error)
}
