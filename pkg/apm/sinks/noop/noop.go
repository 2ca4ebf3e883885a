// Package noop provides a sink that discards all events.
// Useful for testing and for disabling error reporting.
package noop

import (
	"context"
	"sync/atomic"

	"github.com/strongdm/apmcore/pkg/apm"
)

// Sink discards events, counting them.
type Sink struct {
	discarded atomic.Int64
}

// NewNoopSink creates a sink that discards all events.
func NewNoopSink() *Sink {
	return &Sink{}
}

// Write discards the event.
func (s *Sink) Write(ctx context.Context, event apm.ErrorEvent) error {
	s.discarded.Add(1)
	return nil
}

// Flush is a no-op.
func (s *Sink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Sink) Close() error {
	return nil
}

// Discarded returns the number of events written so far.
func (s *Sink) Discarded() int64 {
	return s.discarded.Load()
}
