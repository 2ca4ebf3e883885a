// LLM request and response snapshots for the operation history. Only
// metadata is kept; prompts and completions may carry secrets.
package agentssdk

import (
	llmsdk "github.com/strongdm/ai-llm-sdk/pkg/llm"
)

// snapshotMessages bounds the messages described per request, newest kept.
const snapshotMessages = 10

func snapshotLLMRequest(req llmsdk.Request) *LLMOperation {
	op := &LLMOperation{
		Model:        req.Model,
		Provider:     string(req.Provider),
		MessageCount: len(req.Messages),
		Temperature:  req.Temperature,
		TopP:         req.TopP,
		MaxTokens:    req.MaxTokens,
		ToolCount:    len(req.Tools),
	}

	for _, tool := range req.Tools {
		op.ToolNames = append(op.ToolNames, tool.Name)
	}

	msgs := req.Messages
	if len(msgs) > snapshotMessages {
		msgs = msgs[len(msgs)-snapshotMessages:]
	}
	op.Messages = make([]MessageMetadata, 0, len(msgs))
	for _, msg := range msgs {
		op.Messages = append(op.Messages, snapshotMessage(msg))
	}
	return op
}

func snapshotMessage(msg llmsdk.Message) MessageMetadata {
	md := MessageMetadata{
		Role:       string(msg.Role),
		PartsCount: len(msg.Parts),
	}
	for _, part := range msg.Parts {
		md.ContentLength += len(part.Text)
		md.HasImage = md.HasImage || part.ImageData != nil
		md.HasToolCall = md.HasToolCall || part.ToolCall != nil
		md.HasToolResult = md.HasToolResult || part.ToolResult != nil
	}
	return md
}

func recordLLMResponse(op *LLMOperation, resp llmsdk.Response) {
	if op == nil {
		return
	}
	op.ResponseID = resp.ID
	op.FinishReason = string(resp.FinishReason)
	op.PromptTokens = resp.Usage.PromptTokens
	op.CompletionTokens = resp.Usage.CompletionTokens
	op.TotalTokens = resp.Usage.TotalTokens

	op.ToolCallCount = len(resp.ToolCalls)
	op.ToolCallNames = nil
	for _, tc := range resp.ToolCalls {
		op.ToolCallNames = append(op.ToolCallNames, tc.Name)
	}
}
