// module.go binds the host's diagnostic channel to per-request runtimes.

package hooking

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Runtime is the hooking state of one request.
type Runtime struct {
	Storage     *Storage
	Interceptor *Interceptor
	Observer    *Observer
}

// NewRuntime assembles a request's Interceptor and Observer over a shared
// storage. handler receives the events the Observer forwards.
func NewRuntime(engine Engine, storage *Storage, handler ErrorHandler, opts ...Option) *Runtime {
	return &Runtime{
		Storage:     storage,
		Interceptor: NewInterceptor(storage, engine, opts...),
		Observer:    NewObserver(engine, storage, handler, opts...),
	}
}

type runtimeKey struct{}

// WithRuntime returns a context carrying rt.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// RuntimeFromContext returns the Runtime carried by ctx.
func RuntimeFromContext(ctx context.Context) (*Runtime, bool) {
	if ctx == nil {
		return nil, false
	}
	rt, ok := ctx.Value(runtimeKey{}).(*Runtime)
	return rt, ok && rt != nil
}

// Module owns the process-wide registration with the host's diagnostic
// channel.
type Module struct {
	once       sync.Once
	registered atomic.Bool
	logger     *slog.Logger
}

// NewModule creates an unregistered Module.
func NewModule(opts ...Option) *Module {
	o := applyOptions(opts)
	return &Module{logger: o.logger}
}

// Register installs the error callback on ch. Only the first call has an
// effect; later calls return ErrAlreadyRegistered.
func (m *Module) Register(ch DiagnosticChannel) error {
	err := ErrAlreadyRegistered
	m.once.Do(func() {
		ch.RegisterErrorCallback(m.ErrorCallback)
		m.registered.Store(true)
		err = nil
		m.logger.Debug("error callback registered")
	})
	return err
}

// Registered reports whether Register succeeded.
func (m *Module) Registered() bool {
	return m.registered.Load()
}

// ErrorCallback is the function installed on the diagnostic channel. It
// normalizes the arguments and hands the event to the Observer of the
// request carried by ctx. Events raised outside a request are logged and
// dropped.
func (m *Module) ErrorCallback(ctx context.Context, kind int, fileName FileNameArg, line uint32, message *HostString) {
	ev := ErrorEvent{
		Kind:     kind,
		FileName: fileNameView(fileName),
		Line:     line,
		Message:  message.View(),
	}

	rt, ok := RuntimeFromContext(ctx)
	if !ok || rt.Observer == nil {
		m.logger.Warn("error raised outside of a request",
			"kind", ev.Kind,
			"file", ev.FileName,
			"line", ev.Line)
		return
	}
	rt.Observer.Observe(ctx, ev)
}
