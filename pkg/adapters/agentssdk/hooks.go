// hooks.go implements agents.RunHooks to record what a run is doing. It never
// reports errors itself; the run's request scope does.

package agentssdk

import (
	"context"
	"log/slog"
	"time"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"
	llmsdk "github.com/strongdm/ai-llm-sdk/pkg/llm"

	"github.com/strongdm/apmcore/pkg/apm"
	"github.com/strongdm/apmcore/pkg/logging"
)

// HookAdapter implements agents.RunHooks. It records enrichment for the run
// the context belongs to and delegates to an inner RunHooks.
type HookAdapter struct {
	store    EnrichmentStore
	inner    agents.RunHooks
	scrubber *apm.Scrubber
	logger   *slog.Logger
	now      func() time.Time
}

var _ agents.RunHooks = (*HookAdapter)(nil)

// NewHookAdapter wraps inner, which may be nil. Tool input and output kept in
// the operation history are scrubbed with scrubber; nil uses the default
// scrubber configuration.
func NewHookAdapter(store EnrichmentStore, inner agents.RunHooks, scrubber *apm.Scrubber, logger *slog.Logger) *HookAdapter {
	if scrubber == nil {
		scrubber = apm.NewScrubber(apm.DefaultScrubberConfig())
	}
	return &HookAdapter{
		store:    store,
		inner:    inner,
		scrubber: scrubber,
		logger:   logging.ForFeature(logger, logging.FeatureHooks),
		now:      time.Now,
	}
}

func (h *HookAdapter) OnAgentStart(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent) error {
	if agent != nil {
		h.update(ctx, func(e *Enrichment) {
			e.AgentName = agent.Name()
		})
	}
	if h.inner != nil {
		return h.inner.OnAgentStart(ctx, runCtx, agent)
	}
	return nil
}

func (h *HookAdapter) OnAgentEnd(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent, result agents.RunResult) error {
	if h.inner != nil {
		return h.inner.OnAgentEnd(ctx, runCtx, agent, result)
	}
	return nil
}

// OnHandoff makes the receiving agent the current one.
func (h *HookAdapter) OnHandoff(ctx context.Context, runCtx *agents.RunContext, from *agents.Agent, to *agents.Agent) error {
	if to != nil {
		h.update(ctx, func(e *Enrichment) {
			e.AgentName = to.Name()
			e.Operation = "handoff"
			e.OperationID = ""
		})
	}
	if h.inner != nil {
		return h.inner.OnHandoff(ctx, runCtx, from, to)
	}
	return nil
}

func (h *HookAdapter) OnToolStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, call llmsdk.ToolCall) error {
	var input string
	if len(call.Arguments) > 0 {
		input = h.scrubber.ScrubJSON(string(call.Arguments))
	}
	h.update(ctx, func(e *Enrichment) {
		if agent != nil {
			e.AgentName = agent.Name()
		}
		e.Operation = apm.OperationTool
		e.ToolName = tool.Name
		e.ToolCallID = call.ID
		e.OperationID = call.ID
		e.RecordOperation(OperationRecord{
			Kind:      OperationKindTool,
			Timestamp: h.now(),
			AgentName: e.AgentName,
			Tool: &ToolOperation{
				Name:      tool.Name,
				CallID:    call.ID,
				InputSize: len(call.Arguments),
				Input:     input,
			},
		})
	})

	if h.inner != nil {
		return h.inner.OnToolStart(ctx, runCtx, agent, tool, call)
	}
	return nil
}

func (h *HookAdapter) OnToolEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, output string) error {
	scrubbed := h.scrubber.ScrubMessage(output)
	now := h.now()
	h.update(ctx, func(e *Enrichment) {
		e.UpdateLastOperation(OperationKindTool, func(r *OperationRecord) {
			r.Duration = now.Sub(r.Timestamp).Milliseconds()
			r.Tool.OutputSize = len(output)
			r.Tool.Output = scrubbed
		})
	})

	if h.inner != nil {
		return h.inner.OnToolEnd(ctx, runCtx, agent, tool, output)
	}
	return nil
}

func (h *HookAdapter) OnLLMStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, req llmsdk.Request) error {
	h.update(ctx, func(e *Enrichment) {
		if agent != nil {
			e.AgentName = agent.Name()
		}
		e.Operation = apm.OperationLLM
		e.OperationID = ""
		e.Model = req.Model
		e.RecordOperation(OperationRecord{
			Kind:      OperationKindLLM,
			Timestamp: h.now(),
			AgentName: e.AgentName,
			LLM:       snapshotLLMRequest(req),
		})
	})

	if h.inner != nil {
		return h.inner.OnLLMStart(ctx, runCtx, agent, req)
	}
	return nil
}

func (h *HookAdapter) OnLLMEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, resp llmsdk.Response) error {
	now := h.now()
	h.update(ctx, func(e *Enrichment) {
		e.UpdateLastOperation(OperationKindLLM, func(r *OperationRecord) {
			r.Duration = now.Sub(r.Timestamp).Milliseconds()
			recordLLMResponse(r.LLM, resp)
		})
	})

	if h.inner != nil {
		return h.inner.OnLLMEnd(ctx, runCtx, agent, resp)
	}
	return nil
}

// update applies fn to the enrichment of the run ctx belongs to. Contexts
// outside a run are ignored.
func (h *HookAdapter) update(ctx context.Context, fn func(e *Enrichment)) {
	runID, ok := apm.RequestIDFromContext(ctx)
	if !ok {
		logging.Trace(ctx, h.logger, "run hook outside a run, enrichment skipped")
		return
	}
	h.store.Update(runID, fn)
}
