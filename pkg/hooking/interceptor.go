// interceptor.go runs the hooks around instrumented calls.

package hooking

import (
	"context"
	"log/slog"
)

// OutcomeKind tells a post-hook how the call ended.
type OutcomeKind int

const (
	// Returned means the call completed normally.
	Returned OutcomeKind = iota
	// Threw means the call unwound with an error.
	Threw
	// Fatal means the call was aborted: a panic or an engine shutdown.
	Fatal
)

func (k OutcomeKind) String() string {
	switch k {
	case Returned:
		return "returned"
	case Threw:
		return "threw"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is what a post-hook observes about a finished call.
type Outcome struct {
	Kind   OutcomeKind
	Return any
	Err    error
}

// Call is the context of one instrumented call, as seen by its hooks.
type Call struct {
	Key      FunctionKey
	Class    string
	Function string
	This     any
	Args     []any
	File     string
	Line     int
}

// Interceptor dispatches the hooks of one request's instrumented calls.
// It is request-local and not safe for concurrent use.
type Interceptor struct {
	storage *Storage
	engine  Engine
	logger  *slog.Logger
	pending []*Invocation
}

// NewInterceptor creates an Interceptor reading hooks from storage.
func NewInterceptor(storage *Storage, engine Engine, opts ...Option) *Interceptor {
	o := applyOptions(opts)
	return &Interceptor{
		storage: storage,
		engine:  engine,
		logger:  o.logger,
	}
}

// Invocation is an instrumented call between its pre-hooks and post-hooks.
type Invocation struct {
	interceptor *Interceptor
	entry       *Entry
	call        *Call
	done        bool
}

// Call returns the call context passed to the hooks.
func (inv *Invocation) Call() *Call {
	return inv.call
}

// Begin is invoked by the host right before the function in frame executes.
// On a hit it runs the pre-hooks and returns the pending invocation; on a
// miss it returns nil.
func (i *Interceptor) Begin(ctx context.Context, frame FrameHandle, call *Call) *Invocation {
	key, ok := ComputeKey(i.engine, frame)
	if !ok {
		return nil
	}
	entry, ok := i.storage.MatchKey(key, i.engine, frame)
	if !ok {
		return nil
	}

	if call == nil {
		call = &Call{}
	}
	call.Key = key
	call.Class = entry.Class
	call.Function = entry.Function

	inv := &Invocation{interceptor: i, entry: entry, call: call}
	i.pending = append(i.pending, inv)

	for _, cb := range entry.Hooks {
		if cb.Pre == nil {
			continue
		}
		i.runHook(ctx, "pre", cb.Instrumentation, call, func() error {
			return cb.Pre(ctx, call)
		})
	}
	return inv
}

// End is invoked by the host after the call returned or unwound. It runs the
// post-hooks in reverse registration order and returns the outcome they left.
// Only the first End of an invocation runs hooks; End on nil is a no-op.
func (inv *Invocation) End(ctx context.Context, out Outcome) Outcome {
	if inv == nil || inv.done {
		return out
	}
	inv.done = true

	i := inv.interceptor
	i.release(inv)

	hooks := inv.entry.Hooks
	for n := len(hooks) - 1; n >= 0; n-- {
		cb := hooks[n]
		if cb.Post == nil {
			continue
		}
		i.runHook(ctx, "post", cb.Instrumentation, inv.call, func() error {
			return cb.Post(ctx, inv.call, &out)
		})
	}
	return out
}

// Invoke runs fn as the body of the callable executing in frame. Post-hooks
// see an error returned by fn as Threw and a panic as Fatal; the panic is
// re-raised once they ran. Errors leaving an instrumented call are wrapped
// in CallError.
func (i *Interceptor) Invoke(ctx context.Context, frame FrameHandle, call *Call, fn func(ctx context.Context, args []any) (any, error)) (result any, err error) {
	inv := i.Begin(ctx, frame, call)
	if inv == nil {
		var args []any
		if call != nil {
			args = call.Args
		}
		return fn(ctx, args)
	}

	completed := false
	defer func() {
		if completed {
			return
		}
		r := recover()
		inv.End(ctx, Outcome{Kind: Fatal, Err: &PanicError{Value: r}})
		if r != nil {
			panic(r)
		}
	}()

	result, err = fn(ctx, inv.call.Args)
	completed = true

	out := Outcome{Kind: Returned, Return: result}
	if err != nil {
		out = Outcome{Kind: Threw, Err: err}
	}
	out = inv.End(ctx, out)

	if err != nil {
		return nil, &CallError{
			Key:      inv.call.Key,
			Class:    inv.call.Class,
			Function: inv.call.Function,
			Err:      err,
		}
	}
	return out.Return, nil
}

// Shutdown is the engine's fatal-abort notification. Every pending
// invocation ends with Fatal, innermost first.
func (i *Interceptor) Shutdown(ctx context.Context) {
	for len(i.pending) > 0 {
		inv := i.pending[len(i.pending)-1]
		inv.End(ctx, Outcome{Kind: Fatal, Err: ErrEngineShutdown})
	}
}

// Pending returns the number of invocations whose post-hooks have not run.
func (i *Interceptor) Pending() int {
	return len(i.pending)
}

func (i *Interceptor) release(inv *Invocation) {
	for n := len(i.pending) - 1; n >= 0; n-- {
		if i.pending[n] == inv {
			i.pending = append(i.pending[:n], i.pending[n+1:]...)
			return
		}
	}
}

// runHook contains a hook's error or panic.
func (i *Interceptor) runHook(ctx context.Context, phase, instrumentation string, call *Call, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.WarnContext(ctx, "hook panicked",
				"phase", phase,
				"instrumentation", instrumentation,
				"class", call.Class,
				"function", call.Function,
				"panic", r)
		}
	}()
	if err := fn(); err != nil {
		i.logger.WarnContext(ctx, "hook failed",
			"phase", phase,
			"instrumentation", instrumentation,
			"class", call.Class,
			"function", call.Function,
			"error", err)
	}
}
