package agentssdk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"
	llmsdk "github.com/strongdm/ai-llm-sdk/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strongdm/apmcore/pkg/apm"
)

// mockRunHooks implements agents.RunHooks for testing.
type mockRunHooks struct {
	agentStartCalled bool
	toolStartCalled  bool
	toolEndCalled    bool
	llmStartCalled   bool
	llmEndCalled     bool
	handoffCalled    bool
	returnErr        error
}

func (m *mockRunHooks) OnAgentStart(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent) error {
	m.agentStartCalled = true
	return m.returnErr
}

func (m *mockRunHooks) OnAgentEnd(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent, result agents.RunResult) error {
	return m.returnErr
}

func (m *mockRunHooks) OnHandoff(ctx context.Context, runCtx *agents.RunContext, from *agents.Agent, to *agents.Agent) error {
	m.handoffCalled = true
	return m.returnErr
}

func (m *mockRunHooks) OnToolStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, call llmsdk.ToolCall) error {
	m.toolStartCalled = true
	return m.returnErr
}

func (m *mockRunHooks) OnToolEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, output string) error {
	m.toolEndCalled = true
	return m.returnErr
}

func (m *mockRunHooks) OnLLMStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, req llmsdk.Request) error {
	m.llmStartCalled = true
	return m.returnErr
}

func (m *mockRunHooks) OnLLMEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, resp llmsdk.Response) error {
	m.llmEndCalled = true
	return m.returnErr
}

func toolCall(id, args string) llmsdk.ToolCall {
	return llmsdk.ToolCall{ID: id, Name: "search", Arguments: json.RawMessage(args)}
}

func newAgent(name string) *agents.Agent {
	return agents.NewAgent(agents.AgentConfig{
		Name:         name,
		Instructions: "be helpful",
		Model:        "test-model",
	})
}

// newTestAdapter returns an adapter whose clock advances 5ms per reading.
func newTestAdapter(store EnrichmentStore, inner agents.RunHooks) *HookAdapter {
	h := NewHookAdapter(store, inner, nil, nil)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time {
		now = now.Add(5 * time.Millisecond)
		return now
	}
	return h
}

func runContext(runID string) context.Context {
	return apm.WithRequestID(context.Background(), runID)
}

func TestHookAdapter_OnToolStart_CapturesEnrichment(t *testing.T) {
	store := NewEnrichmentStore()
	h := newTestAdapter(store, nil)

	err := h.OnToolStart(runContext("run-1"), nil, newAgent("tool-agent"), agents.Tool{Name: "search"},
		toolCall("call-123", `{"query":"weather","password":"hunter2"}`))
	require.NoError(t, err)

	e, ok := store.Get("run-1")
	require.True(t, ok)
	assert.Equal(t, "tool-agent", e.AgentName)
	assert.Equal(t, apm.OperationTool, e.Operation)
	assert.Equal(t, "search", e.ToolName)
	assert.Equal(t, "call-123", e.ToolCallID)
	assert.Equal(t, "call-123", e.OperationID)

	history := e.OperationHistory()
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Tool)
	assert.Equal(t, OperationKindTool, history[0].Kind)
	assert.Equal(t, "tool-agent", history[0].AgentName)
	assert.Equal(t, len(`{"query":"weather","password":"hunter2"}`), history[0].Tool.InputSize)
	assert.Contains(t, history[0].Tool.Input, `"query":"weather"`)
	assert.NotContains(t, history[0].Tool.Input, "hunter2")
}

func TestHookAdapter_OnToolEnd_CompletesRecord(t *testing.T) {
	store := NewEnrichmentStore()
	h := newTestAdapter(store, nil)
	ctx := runContext("run-1")

	require.NoError(t, h.OnToolStart(ctx, nil, nil, agents.Tool{Name: "search"}, toolCall("call-1", "")))
	require.NoError(t, h.OnToolEnd(ctx, nil, nil, agents.Tool{Name: "search"}, "contact admin@example.com"))

	e, _ := store.Get("run-1")
	history := e.OperationHistory()
	require.Len(t, history, 1)
	assert.Equal(t, int64(5), history[0].Duration)
	assert.Empty(t, history[0].Tool.Input, "no arguments, no input")
	assert.Equal(t, len("contact admin@example.com"), history[0].Tool.OutputSize)
	assert.NotContains(t, history[0].Tool.Output, "admin@example.com")
}

func TestHookAdapter_OnAgentStart_CapturesAgentName(t *testing.T) {
	store := NewEnrichmentStore()
	h := newTestAdapter(store, nil)

	require.NoError(t, h.OnAgentStart(runContext("run-1"), nil, newAgent("my-agent")))

	e, ok := store.Get("run-1")
	require.True(t, ok)
	assert.Equal(t, "my-agent", e.AgentName)
}

func TestHookAdapter_OnHandoff_SwitchesAgent(t *testing.T) {
	store := NewEnrichmentStore()
	inner := &mockRunHooks{}
	h := newTestAdapter(store, inner)

	require.NoError(t, h.OnHandoff(runContext("run-1"), nil, newAgent("triage"), newAgent("billing")))

	e, _ := store.Get("run-1")
	assert.Equal(t, "billing", e.AgentName)
	assert.Equal(t, "handoff", e.Operation)
	assert.True(t, inner.handoffCalled)
}

func TestHookAdapter_OnLLMStart_CapturesModel(t *testing.T) {
	store := NewEnrichmentStore()
	h := newTestAdapter(store, nil)
	ctx := runContext("run-1")

	require.NoError(t, h.OnToolStart(ctx, nil, nil, agents.Tool{Name: "search"}, toolCall("call-1", `{}`)))
	require.NoError(t, h.OnLLMStart(ctx, nil, nil, llmsdk.Request{
		Model:    "gpt-4",
		Messages: []llmsdk.Message{{Role: llmsdk.RoleAssistant}},
	}))

	e, _ := store.Get("run-1")
	assert.Equal(t, "gpt-4", e.Model)
	assert.Equal(t, apm.OperationLLM, e.Operation)
	assert.Empty(t, e.OperationID, "the tool call ID belongs to the previous operation")

	history := e.OperationHistory()
	require.Len(t, history, 2)
	require.NotNil(t, history[1].LLM)
	assert.Equal(t, "gpt-4", history[1].LLM.Model)
	assert.Equal(t, 1, history[1].LLM.MessageCount)
}

func TestHookAdapter_OnLLMEnd_RecordsResponse(t *testing.T) {
	store := NewEnrichmentStore()
	h := newTestAdapter(store, nil)
	ctx := runContext("run-1")

	require.NoError(t, h.OnLLMStart(ctx, nil, nil, llmsdk.Request{Model: "gpt-4"}))
	require.NoError(t, h.OnLLMEnd(ctx, nil, nil, llmsdk.Response{
		ID:           "resp-1",
		FinishReason: llmsdk.FinishReasonToolCalls,
		ToolCalls:    []llmsdk.ToolCall{{Name: "search"}, {Name: "lookup"}},
	}))

	e, _ := store.Get("run-1")
	llm := e.OperationHistory()[0].LLM
	assert.Equal(t, "resp-1", llm.ResponseID)
	assert.Equal(t, string(llmsdk.FinishReasonToolCalls), llm.FinishReason)
	assert.Equal(t, 2, llm.ToolCallCount)
	assert.Equal(t, []string{"search", "lookup"}, llm.ToolCallNames)
	assert.Equal(t, int64(5), e.OperationHistory()[0].Duration)
}

func TestHookAdapter_OnLLMEnd_IgnoresOtherOperation(t *testing.T) {
	store := NewEnrichmentStore()
	h := newTestAdapter(store, nil)
	ctx := runContext("run-1")

	require.NoError(t, h.OnToolStart(ctx, nil, nil, agents.Tool{Name: "search"}, toolCall("call-1", `{}`)))
	require.NoError(t, h.OnLLMEnd(ctx, nil, nil, llmsdk.Response{ID: "resp-1"}))

	e, _ := store.Get("run-1")
	history := e.OperationHistory()
	require.Len(t, history, 1)
	assert.Nil(t, history[0].LLM)
}

func TestHookAdapter_DelegatesToInner(t *testing.T) {
	inner := &mockRunHooks{}
	h := newTestAdapter(NewEnrichmentStore(), inner)
	ctx := runContext("run-1")

	require.NoError(t, h.OnAgentStart(ctx, nil, nil))
	require.NoError(t, h.OnToolStart(ctx, nil, nil, agents.Tool{Name: "t"}, llmsdk.ToolCall{}))
	require.NoError(t, h.OnToolEnd(ctx, nil, nil, agents.Tool{Name: "t"}, ""))
	require.NoError(t, h.OnLLMStart(ctx, nil, nil, llmsdk.Request{}))
	require.NoError(t, h.OnLLMEnd(ctx, nil, nil, llmsdk.Response{}))

	assert.True(t, inner.agentStartCalled)
	assert.True(t, inner.toolStartCalled)
	assert.True(t, inner.toolEndCalled)
	assert.True(t, inner.llmStartCalled)
	assert.True(t, inner.llmEndCalled)
}

func TestHookAdapter_ReturnsInnerError(t *testing.T) {
	innerErr := errors.New("inner hook error")
	store := NewEnrichmentStore()
	h := newTestAdapter(store, &mockRunHooks{returnErr: innerErr})

	err := h.OnToolStart(runContext("run-1"), nil, nil, agents.Tool{Name: "search"}, toolCall("call-1", `{}`))
	assert.ErrorIs(t, err, innerErr)

	_, ok := store.Get("run-1")
	assert.True(t, ok, "enrichment is recorded before delegating")
}

func TestHookAdapter_HandlesNoRunID(t *testing.T) {
	store := NewEnrichmentStore()
	h := newTestAdapter(store, nil)

	err := h.OnToolStart(context.Background(), nil, nil, agents.Tool{Name: "search"}, toolCall("call-1", `{}`))
	require.NoError(t, err)

	_, ok := store.Get("")
	assert.False(t, ok)
}
