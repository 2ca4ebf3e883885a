// Package multi provides a sink that fans out to multiple sinks.
// Every route receives the events at or above its minimum severity; errors
// are aggregated.
package multi

import (
	"context"
	"errors"

	"github.com/strongdm/apmcore/pkg/apm"
)

// Route pairs a sink with the least severe event it accepts. An empty
// MinSeverity accepts everything.
type Route struct {
	Sink        apm.Sink
	MinSeverity apm.Severity
}

// multiSink fans out to multiple sinks.
type multiSink struct {
	routes []Route
}

// NewMultiSink creates a sink that writes every event to all sinks.
// Errors are aggregated via errors.Join.
func NewMultiSink(sinks ...apm.Sink) apm.Sink {
	routes := make([]Route, 0, len(sinks))
	for _, s := range sinks {
		routes = append(routes, Route{Sink: s})
	}
	return NewRoutedSink(routes...)
}

// NewRoutedSink creates a sink that writes each event to the routes whose
// MinSeverity it meets. Routes with a nil sink are ignored.
func NewRoutedSink(routes ...Route) apm.Sink {
	kept := make([]Route, 0, len(routes))
	for _, r := range routes {
		if r.Sink != nil {
			kept = append(kept, r)
		}
	}
	return &multiSink{routes: kept}
}

// Write sends the event to every matching route, collecting any errors.
// All routes are called even if some return errors.
func (s *multiSink) Write(ctx context.Context, event apm.ErrorEvent) error {
	var errs []error
	for _, r := range s.routes {
		if !event.Severity.AtLeast(r.MinSeverity) {
			continue
		}
		if err := r.Sink.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush calls Flush on all sinks, collecting any errors.
func (s *multiSink) Flush(ctx context.Context) error {
	var errs []error
	for _, r := range s.routes {
		if err := r.Sink.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on all sinks, collecting any errors.
func (s *multiSink) Close() error {
	var errs []error
	for _, r := range s.routes {
		if err := r.Sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
