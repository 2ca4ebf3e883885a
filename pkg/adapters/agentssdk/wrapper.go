// wrapper.go implements WrappedRunner: every run is one request of the
// reporting core.

package agentssdk

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"

	"github.com/strongdm/apmcore/pkg/apm"
	"github.com/strongdm/apmcore/pkg/hooking"
	"github.com/strongdm/apmcore/pkg/request"
)

// Runner is the part of *agents.Runner the wrapper drives.
type Runner interface {
	Run(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (agents.RunResult, error)
	RunOnce(ctx context.Context, agent *agents.Agent, input string, cfg *agents.RunConfig) (agents.RunResult, error)
	RunStream(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (*agents.StreamingRun, error)
}

var _ Runner = (*agents.Runner)(nil)

// WrappedRunner runs agents inside a request scope. Tool failures are
// reported by the hooks of instrumented tools, run errors no hook reported
// go through the scope's error observer, and panics are recorded before
// they are re-raised.
type WrappedRunner struct {
	inner       Runner
	collector   apm.Collector
	storage     *hooking.Storage
	enrichments EnrichmentStore
	scrubber    *apm.Scrubber
	settings    request.Settings
	logger      *slog.Logger
}

// Run executes the agent with the given input and session.
func (w *WrappedRunner) Run(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (result agents.RunResult, err error) {
	scope, ctx := w.begin(ctx, session)
	defer w.finish(ctx, scope, &err)

	return w.inner.Run(ctx, agent, input, session, w.wrapRunConfig(cfg))
}

// RunOnce executes a single turn of the agent.
func (w *WrappedRunner) RunOnce(ctx context.Context, agent *agents.Agent, input string, cfg *agents.RunConfig) (result agents.RunResult, err error) {
	scope, ctx := w.begin(ctx, nil)
	defer w.finish(ctx, scope, &err)

	return w.inner.RunOnce(ctx, agent, input, w.wrapRunConfig(cfg))
}

// RunStream starts a streaming run. The stream outlives the call, so its
// scope is closed when ctx is done; cancel ctx once the stream is consumed.
// Tool calls still running on the stream finish on their own goroutine.
func (w *WrappedRunner) RunStream(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (*agents.StreamingRun, error) {
	scope, ctx := w.begin(ctx, session)
	defer func() {
		if r := recover(); r != nil {
			w.panicked(ctx, scope, r)
			panic(r)
		}
	}()

	stream, err := w.inner.RunStream(ctx, agent, input, session, w.wrapRunConfig(cfg))
	if err != nil {
		w.reportRunError(ctx, scope, err)
		w.end(ctx, scope)
		return stream, err
	}

	context.AfterFunc(ctx, func() {
		w.close(context.WithoutCancel(ctx), scope)
	})
	return stream, nil
}

// Inner returns the wrapped runner.
func (w *WrappedRunner) Inner() Runner {
	return w.inner
}

func (w *WrappedRunner) begin(ctx context.Context, session any) (*request.Scope, context.Context) {
	if id, ok := w.contextID(ctx, session); ok {
		ctx = apm.WithContextID(ctx, id)
	}
	return request.Begin(ctx, request.Options{
		Storage:   w.storage,
		Collector: w.collector,
		Logger:    w.logger,
		Settings:  w.settings,
		Annotate:  w.annotate,
	})
}

// finish reports how the run ended and ends its scope. Panics are re-raised.
func (w *WrappedRunner) finish(ctx context.Context, scope *request.Scope, errp *error) {
	if r := recover(); r != nil {
		w.panicked(ctx, scope, r)
		panic(r)
	}
	if *errp != nil {
		w.reportRunError(ctx, scope, *errp)
	}
	w.end(ctx, scope)
}

func (w *WrappedRunner) panicked(ctx context.Context, scope *request.Scope, recovered any) {
	if err := scope.RecordPanic(ctx, recovered, debug.Stack()); err != nil {
		w.logger.WarnContext(ctx, "panic not recorded", "request_id", scope.ID(), "error", err)
	}
	w.end(ctx, scope)
}

// reportRunError raises err as a recoverable diagnostic unless a tool hook
// already reported it.
func (w *WrappedRunner) reportRunError(ctx context.Context, scope *request.Scope, err error) {
	if scope.Observed(err) {
		return
	}
	class := classifyError(err)
	w.enrichments.Update(scope.ID(), func(e *Enrichment) {
		e.ErrorClass = class
	})
	scope.Runtime().Observer.Observe(ctx, hooking.ErrorEvent{
		Kind:    int(apm.KindRecoverableError),
		Message: err.Error(),
	})
}

func (w *WrappedRunner) end(ctx context.Context, scope *request.Scope) {
	w.release(ctx, scope, scope.End(ctx))
}

// close ends a scope from outside the goroutine running it.
func (w *WrappedRunner) close(ctx context.Context, scope *request.Scope) {
	w.release(ctx, scope, scope.Close(ctx))
}

func (w *WrappedRunner) release(ctx context.Context, scope *request.Scope, err error) {
	if err != nil && !errors.Is(err, request.ErrScopeEnded) {
		w.logger.WarnContext(ctx, "run scope did not end cleanly", "request_id", scope.ID(), "error", err)
	}
	w.enrichments.Delete(scope.ID())
}

// annotate attaches the run's enrichment to every event of its scope.
func (w *WrappedRunner) annotate(ctx context.Context, ev *apm.ErrorEvent) {
	runID, ok := apm.RequestIDFromContext(ctx)
	if !ok {
		return
	}
	if e, ok := w.enrichments.Get(runID); ok {
		applyEnrichment(ev, e)
	}
}

// contextID returns the cxdb context of the run: the session's when it
// provides one, else the one carried by ctx.
func (w *WrappedRunner) contextID(ctx context.Context, session any) (uint64, bool) {
	if provider, ok := session.(apm.ContextIDProvider); ok {
		if id, err := provider.ContextID(ctx); err == nil && id != 0 {
			return id, true
		}
	}
	return apm.ContextIDFromContext(ctx)
}

// wrapRunConfig clones cfg with its hooks wrapped by a HookAdapter.
func (w *WrappedRunner) wrapRunConfig(cfg *agents.RunConfig) *agents.RunConfig {
	var cloned agents.RunConfig
	if cfg != nil {
		cloned = *cfg
	}
	cloned.Hooks = NewHookAdapter(w.enrichments, cloned.Hooks, w.scrubber, w.logger)
	return &cloned
}
