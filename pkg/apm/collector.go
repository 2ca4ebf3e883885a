package apm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Collector records error events to a sink.
type Collector interface {
	// Record completes the event from ctx, scrubs and fingerprints it, then
	// writes it to the sink. It blocks until the sink accepted the event.
	Record(ctx context.Context, event ErrorEvent) error

	// Flush persists buffered events.
	Flush(ctx context.Context) error

	// Close releases the sink.
	Close() error
}

var processStart = time.Now()

// CollectorOption configures NewCollector.
type CollectorOption func(*collector)

// WithSink sets where recorded events go. Without it events are discarded.
func WithSink(sink Sink) CollectorOption {
	return func(c *collector) { c.sink = sink }
}

// WithScrubber scrubs events with cfg.
func WithScrubber(cfg ScrubberConfig) CollectorOption {
	return func(c *collector) { c.scrubber = NewScrubber(cfg) }
}

// WithDefaultScrubbing scrubs events with DefaultScrubberConfig.
func WithDefaultScrubbing() CollectorOption {
	return WithScrubber(DefaultScrubberConfig())
}

// WithClock overrides the clock used to stamp events.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *collector) { c.now = now }
}

// WithHostName replaces the OS host name in captured system state.
func WithHostName(name string) CollectorOption {
	return func(c *collector) { c.hostName = name }
}

// WithProcessStart sets the time process uptime is measured from. It
// defaults to package initialization.
func WithProcessStart(t time.Time) CollectorOption {
	return func(c *collector) { c.started = t }
}

type collector struct {
	sink     Sink
	scrubber *Scrubber
	now      func() time.Time
	hostName string
	started  time.Time
}

// NewCollector returns a Collector writing to the configured sink.
func NewCollector(opts ...CollectorOption) Collector {
	c := &collector{
		sink:    noopSinkInternal{},
		now:     time.Now,
		started: processStart,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = noopSinkInternal{}
	}
	return c
}

func (c *collector) Record(ctx context.Context, event ErrorEvent) error {
	c.stamp(&event)
	c.enrich(ctx, &event)
	c.scrub(&event)
	event.Fingerprint = Fingerprint(event)
	return c.sink.Write(ctx, event)
}

func (c *collector) stamp(ev *ErrorEvent) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = c.now()
	}
	if ev.Severity == "" {
		ev.Severity = SeverityError
	}
}

// enrich fills the fields ctx and the process can supply. Fields the caller
// set are kept.
func (c *collector) enrich(ctx context.Context, ev *ErrorEvent) {
	if ev.RequestID == "" {
		if id, ok := RequestIDFromContext(ctx); ok {
			ev.RequestID = id
		}
	}
	if ev.ContextID == nil {
		if id, ok := ContextIDFromContext(ctx); ok {
			ev.ContextID = &id
		}
	}
	if ev.TraceID == "" {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			ev.TraceID = sc.TraceID().String()
			ev.SpanID = sc.SpanID().String()
		}
	}
	if ev.SystemState == nil {
		ev.SystemState = CaptureSystemState(c.started)
		if c.hostName != "" {
			ev.SystemState.HostName = c.hostName
		}
	}
}

func (c *collector) scrub(ev *ErrorEvent) {
	if c.scrubber == nil {
		return
	}
	ev.Message = c.scrubber.ScrubMessage(ev.Message)
	ev.StackTrace = c.scrubber.ScrubStackTrace(ev.StackTrace)
	ev.File = c.scrubber.ScrubPath(ev.File)
	ev.Metadata = c.scrubber.ScrubMetadata(ev.Metadata)
}

func (c *collector) Flush(ctx context.Context) error {
	return c.sink.Flush(ctx)
}

func (c *collector) Close() error {
	return c.sink.Close()
}

// noopSinkInternal stands in for sinks/noop, which imports this package.
type noopSinkInternal struct{}

func (noopSinkInternal) Write(context.Context, ErrorEvent) error { return nil }

func (noopSinkInternal) Flush(context.Context) error { return nil }

func (noopSinkInternal) Close() error { return nil }
