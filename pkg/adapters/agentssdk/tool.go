package agentssdk

import (
	"context"
	"encoding/json"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"

	"github.com/strongdm/apmcore/pkg/callstack"
	"github.com/strongdm/apmcore/pkg/hooking"
	"github.com/strongdm/apmcore/pkg/request"
)

const (
	// ToolClass is the class tool calls execute under.
	ToolClass = "agents.Tool"

	// Instrumentation names the hooks registered by InstrumentTools.
	Instrumentation = "agents_tool"
)

// WrapTool routes calls of tool through the call interceptor of the run they
// belong to, so hooks registered for ToolClass::tool.Name run around them.
// Outside a run the handler is called directly.
func WrapTool(tool agents.Tool) agents.Tool {
	handler := tool.Handler
	if handler == nil {
		return tool
	}
	site := callstack.Site{Class: ToolClass, Function: tool.Name}

	tool.Handler = func(ctx context.Context, args json.RawMessage) (string, error) {
		rt, ok := hooking.RuntimeFromContext(ctx)
		if !ok {
			return handler(ctx, args)
		}
		stack, ok := callstack.FromContext(ctx)
		if !ok {
			return handler(ctx, args)
		}

		out, err := stack.Call(ctx, rt.Interceptor, site, nil, []any{args}, func(ctx context.Context, in []any) (any, error) {
			if len(in) > 0 {
				if raw, ok := in[0].(json.RawMessage); ok {
					args = raw
				}
			}
			return handler(ctx, args)
		})
		s, _ := out.(string)
		return s, err
	}
	return tool
}

// WrapTools applies WrapTool to each tool.
func WrapTools(tools ...agents.Tool) []agents.Tool {
	out := make([]agents.Tool, len(tools))
	for i, t := range tools {
		out[i] = WrapTool(t)
	}
	return out
}

// InstrumentTools registers the hooks of each tool in the wrapper's storage:
// a failed call is reported by the run's request scope and marked in the
// run's operation history. It returns the number of tools hooked. Call it
// before the storage is sealed.
func (w *WrappedRunner) InstrumentTools(tools ...agents.Tool) int {
	if w.storage == nil {
		w.logger.Warn("no hook storage configured, tools not instrumented")
		return 0
	}

	hooked := 0
	for _, tool := range tools {
		// Post-hooks run in reverse order: the history is marked before the
		// event is reported.
		if !w.storage.Hook(Instrumentation, ToolClass, tool.Name, nil, request.RecordingPost()) {
			continue
		}
		w.storage.Hook(Instrumentation, ToolClass, tool.Name, nil, w.markToolOutcome)
		hooked++
	}
	return hooked
}

func (w *WrappedRunner) markToolOutcome(ctx context.Context, call *hooking.Call, out *hooking.Outcome) error {
	if out.Kind == hooking.Returned || out.Err == nil {
		return nil
	}
	scope, ok := request.FromContext(ctx)
	if !ok {
		return request.ErrNoScope
	}
	if scope.Ended() {
		return nil
	}
	w.enrichments.Update(scope.ID(), func(e *Enrichment) {
		e.UpdateLastOperation(OperationKindTool, func(r *OperationRecord) {
			r.Error = out.Err.Error()
		})
	})
	return nil
}
