// Operation history of a run: the LLM and tool operations that led to an error.
package agentssdk

import (
	"time"
)

// defaultHistorySize bounds the operations kept per run.
const defaultHistorySize = 20

// HistoryMetadataKey is the event metadata key holding the operation history
// as a JSON array. The collector scrubs it as JSON.
const HistoryMetadataKey = "apm.operation_history_json"

// Operation kinds.
const (
	OperationKindLLM  = "llm"
	OperationKindTool = "tool"
)

// OperationRecord captures a single operation (LLM call or tool call).
type OperationRecord struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Duration  int64     `json:"duration_ms,omitempty"`
	AgentName string    `json:"agent_name,omitempty"`

	// LLM is set when Kind is OperationKindLLM.
	LLM *LLMOperation `json:"llm,omitempty"`

	// Tool is set when Kind is OperationKindTool.
	Tool *ToolOperation `json:"tool,omitempty"`

	Error string `json:"error,omitempty"`
}

// LLMOperation captures metadata from an LLM call. Message text is never
// stored.
type LLMOperation struct {
	Model        string            `json:"model"`
	Provider     string            `json:"provider"`
	MessageCount int               `json:"message_count"`
	Messages     []MessageMetadata `json:"messages"`
	Temperature  *float32          `json:"temperature,omitempty"`
	TopP         *float32          `json:"top_p,omitempty"`
	MaxTokens    *int              `json:"max_tokens,omitempty"`
	ToolCount    int               `json:"tool_count"`
	ToolNames    []string          `json:"tool_names,omitempty"`

	// Set from the response.
	ResponseID       string   `json:"response_id,omitempty"`
	FinishReason     string   `json:"finish_reason,omitempty"`
	ToolCallCount    int      `json:"tool_call_count,omitempty"`
	ToolCallNames    []string `json:"tool_call_names,omitempty"`
	PromptTokens     int      `json:"prompt_tokens,omitempty"`
	CompletionTokens int      `json:"completion_tokens,omitempty"`
	TotalTokens      int      `json:"total_tokens,omitempty"`
}

// MessageMetadata describes a message without its content.
type MessageMetadata struct {
	Role          string `json:"role"`
	ContentLength int    `json:"content_length"`
	PartsCount    int    `json:"parts_count"`
	HasImage      bool   `json:"has_image,omitempty"`
	HasToolCall   bool   `json:"has_tool_call,omitempty"`
	HasToolResult bool   `json:"has_tool_result,omitempty"`
}

// ToolOperation captures a tool call. Input and Output are scrubbed.
type ToolOperation struct {
	Name       string `json:"name"`
	CallID     string `json:"call_id"`
	InputSize  int    `json:"input_size"`
	OutputSize int    `json:"output_size,omitempty"`
	Input      string `json:"input,omitempty"`
	Output     string `json:"output,omitempty"`
}

// historyBuffer is a ring buffer of the most recent operations.
type historyBuffer struct {
	records []OperationRecord
	size    int
	next    int
}

func newHistoryBuffer(size int) *historyBuffer {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &historyBuffer{size: size}
}

// Add appends a record, evicting the oldest when full.
func (b *historyBuffer) Add(record OperationRecord) {
	if len(b.records) < b.size {
		b.records = append(b.records, record)
		return
	}
	b.records[b.next] = record
	b.next = (b.next + 1) % b.size
}

// All returns the records oldest first.
func (b *historyBuffer) All() []OperationRecord {
	out := make([]OperationRecord, 0, len(b.records))
	if len(b.records) < b.size {
		return append(out, b.records...)
	}
	out = append(out, b.records[b.next:]...)
	return append(out, b.records[:b.next]...)
}

// Last returns the most recent record, or nil when empty.
func (b *historyBuffer) Last() *OperationRecord {
	if len(b.records) == 0 {
		return nil
	}
	if len(b.records) < b.size {
		return &b.records[len(b.records)-1]
	}
	return &b.records[(b.next-1+b.size)%b.size]
}

func (b *historyBuffer) clone() *historyBuffer {
	if b == nil {
		return nil
	}
	c := *b
	c.records = make([]OperationRecord, len(b.records))
	for i, r := range b.records {
		if r.LLM != nil {
			llm := *r.LLM
			r.LLM = &llm
		}
		if r.Tool != nil {
			tool := *r.Tool
			r.Tool = &tool
		}
		c.records[i] = r
	}
	return &c
}
