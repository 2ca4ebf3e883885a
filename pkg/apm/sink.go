package apm

import "context"

// Sink receives the events a Collector has scrubbed and fingerprinted.
// One sink serves every request, so implementations must be safe for
// concurrent use.
type Sink interface {
	// Write delivers one event. Its error is returned from Collector.Record.
	Write(ctx context.Context, event ErrorEvent) error

	// Flush returns once buffered events are delivered or ctx is done.
	Flush(ctx context.Context) error

	// Close flushes and releases the sink.
	Close() error
}

// SinkFunc adapts a function to an unbuffered Sink.
type SinkFunc func(ctx context.Context, event ErrorEvent) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, event ErrorEvent) error { return f(ctx, event) }

// Flush is a no-op.
func (f SinkFunc) Flush(context.Context) error { return nil }

// Close is a no-op.
func (f SinkFunc) Close() error { return nil }
