package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel/trace"

	"github.com/strongdm/apmcore/pkg/apm"
	"github.com/strongdm/apmcore/pkg/callstack"
	"github.com/strongdm/apmcore/pkg/hooking"
	"github.com/strongdm/apmcore/pkg/logging"
)

var (
	// ErrScopeEnded is returned for events reported after End or Close.
	ErrScopeEnded = errors.New("request: scope ended")

	// ErrNoScope is returned by RecordingPost when the context carries no
	// Scope.
	ErrNoScope = errors.New("request: no scope in context")
)

// Scope is one host request. Its methods may be called from the goroutines
// the request spawns; the hooking runtime itself stays request-local.
type Scope struct {
	id        string
	ctx       context.Context
	started   time.Time
	spanCtx   trace.SpanContext
	runtime   *hooking.Runtime
	engine    hooking.Engine
	collector apm.Collector
	logger    *slog.Logger
	settings  Settings
	annotate  AnnotateFunc

	mu       sync.Mutex
	ended    bool
	recorded int
	dropped  int
	reported []error
	panics   []*hooking.PanicError
}

var _ hooking.ErrorHandler = (*Scope)(nil)

// Begin opens the scope of a request. The returned context carries the
// scope, its hooking.Runtime, its request ID and, when opts.Engine is nil,
// the request's callstack.Stack.
func Begin(ctx context.Context, opts Options) (*Scope, context.Context) {
	logger := logging.OrDiscard(opts.Logger)

	s := &Scope{
		id:        xid.New().String(),
		started:   time.Now(),
		spanCtx:   trace.SpanContextFromContext(ctx),
		engine:    opts.Engine,
		collector: opts.Collector,
		settings:  opts.Settings,
		annotate:  opts.Annotate,
	}
	s.logger = logging.ForFeature(logger, logging.FeatureRequest).With("request_id", s.id)

	if s.engine == nil {
		stack := callstack.New()
		s.engine = stack
		ctx = callstack.WithStack(ctx, stack)
	}
	if s.collector == nil {
		s.collector = apm.NewCollector()
	}

	storage := opts.Storage
	if storage == nil {
		storage = hooking.NewStorage(hooking.WithLogger(logger))
		storage.Seal()
	}
	s.runtime = hooking.NewRuntime(s.engine, storage, s, hooking.WithLogger(logger))

	ctx = hooking.WithRuntime(ctx, s.runtime)
	ctx = apm.WithRequestID(ctx, s.id)
	ctx = withScope(ctx, s)
	s.ctx = ctx

	if s.spanCtx.IsValid() {
		s.logger.DebugContext(ctx, "request began", "trace_id", s.spanCtx.TraceID().String())
	} else {
		s.logger.DebugContext(ctx, "request began")
	}
	return s, ctx
}

// ID returns the request ID.
func (s *Scope) ID() string {
	return s.id
}

// Runtime returns the hooking runtime of the request.
func (s *Scope) Runtime() *hooking.Runtime {
	return s.runtime
}

// Recorded returns the number of events recorded so far.
func (s *Scope) Recorded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded
}

// Ended reports whether End or Close ran.
func (s *Scope) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// HandleError records a diagnostic forwarded by the Observer.
func (s *Scope) HandleError(kind int, fileName string, line uint32, message string) {
	k := apm.Kind(kind)
	err := s.Report(s.ctx, apm.ErrorEvent{
		Severity:  k.Severity(),
		ErrorType: apm.ErrorTypeDiagnostic,
		Kind:      k,
		Message:   message,
		File:      fileName,
		Line:      int(line),
		Operation: apm.OperationDiagnostic,
	})
	if err != nil && !errors.Is(err, ErrScopeEnded) {
		s.logger.Warn("diagnostic not recorded", "kind", k, "error", err)
	}
}

// RecordOutcome reports the outcome of an instrumented call. Calls that
// returned normally are not reported.
func (s *Scope) RecordOutcome(ctx context.Context, call *hooking.Call, out *hooking.Outcome) error {
	if call == nil || out == nil || out.Kind == hooking.Returned {
		return nil
	}

	ev := apm.ErrorEvent{
		Severity:  apm.SeverityError,
		ErrorType: apm.ErrorTypeException,
		Class:     call.Class,
		Function:  call.Function,
		File:      call.File,
		Line:      call.Line,
		Operation: apm.OperationCall,
	}
	if out.Err != nil {
		ev.Message = out.Err.Error()
	}
	if out.Kind == hooking.Fatal {
		ev.Severity = apm.SeverityCrash
		ev.ErrorType = apm.ErrorTypeFatal
		var pe *hooking.PanicError
		if errors.As(out.Err, &pe) {
			ev.ErrorType = apm.ErrorTypePanic
		}
	}

	if out.Err != nil {
		s.mu.Lock()
		s.reported = append(s.reported, out.Err)
		var pe *hooking.PanicError
		if errors.As(out.Err, &pe) {
			s.panics = append(s.panics, pe)
		}
		s.mu.Unlock()
	}
	return s.Report(ctx, ev)
}

// RecordPanic reports a panic recovered at the request boundary. A panic
// whose value an instrumented call already reported is skipped once per
// report.
func (s *Scope) RecordPanic(ctx context.Context, recovered any, stack []byte) error {
	s.mu.Lock()
	for i, pe := range s.panics {
		if sameValue(pe.Value, recovered) {
			s.panics = append(s.panics[:i], s.panics[i+1:]...)
			s.mu.Unlock()
			return nil
		}
	}
	s.mu.Unlock()

	return s.Report(ctx, apm.PanicEvent(ctx, recovered, stack))
}

// sameValue compares panic values by identity. Values of uncomparable
// dynamic types are never the same.
func sameValue(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Observed reports whether err was already reported by a post-hook: it
// passed through an instrumented call or wraps a reported error.
func (s *Scope) Observed(err error) bool {
	if err == nil {
		return false
	}
	if hooking.ObservedByHook(err) {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reported {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

// Report completes ev with the request's context and records it, honouring
// DisableCapture and MaxErrors.
func (s *Scope) Report(ctx context.Context, ev apm.ErrorEvent) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrScopeEnded
	}
	if s.settings.DisableCapture {
		s.mu.Unlock()
		return nil
	}
	if s.settings.MaxErrors > 0 && s.recorded >= s.settings.MaxErrors {
		s.dropped++
		first := s.dropped == 1
		s.mu.Unlock()
		if first {
			s.logger.WarnContext(ctx, "error limit reached, dropping further events",
				"max_errors", s.settings.MaxErrors)
		}
		return nil
	}
	s.recorded++
	s.mu.Unlock()

	s.complete(&ev)
	s.runAnnotate(ctx, &ev)

	if err := s.collector.Record(ctx, ev); err != nil {
		return fmt.Errorf("record %s event: %w", ev.ErrorType, err)
	}
	return nil
}

// complete sets what only the request knows. The collector fills the rest
// from ctx.
func (s *Scope) complete(ev *apm.ErrorEvent) {
	ev.RequestID = s.id
	if s.spanCtx.IsValid() {
		ev.TraceID = s.spanCtx.TraceID().String()
		ev.SpanID = s.spanCtx.SpanID().String()
	}
	if ev.Service == "" {
		ev.Service = s.settings.Service
	}
	if ev.Environment == "" {
		ev.Environment = s.settings.Environment
	}
	if s.settings.ServiceVersion != "" {
		if ev.Metadata == nil {
			ev.Metadata = make(map[string]string)
		}
		ev.Metadata["service_version"] = s.settings.ServiceVersion
	}
	if ev.StackTrace == "" && s.settings.StackTraceLimit != 0 {
		if t, ok := s.engine.(tracer); ok {
			ev.StackTrace = formatTrace(t.Trace(s.settings.StackTraceLimit))
		}
	}
}

func (s *Scope) runAnnotate(ctx context.Context, ev *apm.ErrorEvent) {
	if s.annotate == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.WarnContext(ctx, "annotate panicked", "panic", r)
		}
	}()
	s.annotate(ctx, ev)
}

// End finishes the request on the goroutine that runs it: calls still
// pending end with a Fatal outcome, the collector is flushed and later
// events are rejected. A second End returns ErrScopeEnded.
func (s *Scope) End(ctx context.Context) error {
	return s.finish(ctx, true)
}

// Close finishes the request from another goroutine. Unlike End it leaves
// pending calls alone: their post-hooks still run on the request goroutine
// and their reports are rejected with ErrScopeEnded.
func (s *Scope) Close(ctx context.Context) error {
	return s.finish(ctx, false)
}

func (s *Scope) finish(ctx context.Context, shutdown bool) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrScopeEnded
	}
	if !shutdown {
		s.ended = true
	}
	s.mu.Unlock()

	if shutdown {
		if pending := s.runtime.Interceptor.Pending(); pending > 0 {
			s.logger.DebugContext(ctx, "ending pending calls", "pending", pending)
			s.runtime.Interceptor.Shutdown(ctx)
		}
	}

	s.mu.Lock()
	s.ended = true
	recorded, dropped := s.recorded, s.dropped
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "request ended",
		"duration", time.Since(s.started),
		"errors", recorded,
		"dropped", dropped)

	if err := s.collector.Flush(ctx); err != nil {
		return fmt.Errorf("flush request %s: %w", s.id, err)
	}
	return nil
}

// RecordingPost returns a post-hook reporting the outcome of the call to
// the Scope carried by ctx.
func RecordingPost() hooking.PostHook {
	return func(ctx context.Context, call *hooking.Call, out *hooking.Outcome) error {
		s, ok := FromContext(ctx)
		if !ok {
			return ErrNoScope
		}
		return s.RecordOutcome(ctx, call, out)
	}
}
