// observer.go decides what happens to each diagnostic the host raises.

package hooking

import (
	"context"
	"log/slog"

	"github.com/strongdm/apmcore/pkg/logging"
)

// Decision is what the Observer did with an event.
type Decision int

const (
	// Forwarded means the event reached the ErrorHandler.
	Forwarded Decision = iota
	// Suppressed means the current function is instrumented; its post-hook
	// reports the failure.
	Suppressed
	// DroppedReentrant means the event arrived while another was being
	// forwarded.
	DroppedReentrant
)

func (d Decision) String() string {
	switch d {
	case Forwarded:
		return "forwarded"
	case Suppressed:
		return "suppressed"
	case DroppedReentrant:
		return "dropped_reentrant"
	default:
		return "unknown"
	}
}

// Observer is the error interceptor of one request. It is request-local and
// not safe for concurrent use.
type Observer struct {
	engine  Engine
	storage *Storage
	handler ErrorHandler
	logger  *slog.Logger

	// handling is set while an event is being forwarded to handler.
	handling bool
}

// NewObserver creates an Observer forwarding to handler. A nil engine means
// no frame is ever available, so every event is forwarded.
func NewObserver(engine Engine, storage *Storage, handler ErrorHandler, opts ...Option) *Observer {
	o := applyOptions(opts)
	return &Observer{
		engine:  engine,
		storage: storage,
		handler: handler,
		logger:  o.logger,
	}
}

// Handling reports whether an event is being forwarded right now.
func (o *Observer) Handling() bool {
	return o.handling
}

// Observe processes one event raised by the host.
func (o *Observer) Observe(ctx context.Context, ev ErrorEvent) Decision {
	if logging.Enabled(ctx, o.logger, logging.LevelDebug) {
		o.logger.DebugContext(ctx, "error observed",
			"kind", ev.Kind,
			"file", ev.FileName,
			"line", ev.Line,
			"message", ev.Message)
	}

	if o.handling {
		o.logger.WarnContext(ctx, "error handler loop detected, dropping event",
			"kind", ev.Kind,
			"file", ev.FileName,
			"line", ev.Line)
		return DroppedReentrant
	}

	if o.engine == nil {
		return o.forward(ctx, ev)
	}
	frame, ok := o.engine.CurrentFrame()
	if !ok || frame == nil {
		return o.forward(ctx, ev)
	}

	key, ok := ComputeKey(o.engine, frame)
	if !ok {
		o.logger.WarnContext(ctx, "cannot correlate error with executing function",
			"kind", ev.Kind,
			"file", ev.FileName,
			"line", ev.Line)
		return o.forward(ctx, ev)
	}

	if o.storage != nil {
		if entry, hit := o.storage.MatchKey(key, o.engine, frame); hit {
			o.logger.DebugContext(ctx, "error raised in instrumented function, post-hook reports it",
				"class", entry.Class,
				"function", entry.Function,
				"key", key)
			return Suppressed
		}
	}
	return o.forward(ctx, ev)
}

func (o *Observer) forward(ctx context.Context, ev ErrorEvent) Decision {
	o.handling = true
	defer func() {
		o.handling = false
		if r := recover(); r != nil {
			o.logger.WarnContext(ctx, "error handler panicked",
				"kind", ev.Kind,
				"panic", r)
		}
	}()

	if o.handler != nil {
		o.handler.HandleError(ev.Kind, ev.FileName, ev.Line, ev.Message)
	}
	return Forwarded
}
