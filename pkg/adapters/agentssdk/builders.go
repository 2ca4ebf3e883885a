// builders.go maps run errors and hook enrichment onto error events.

package agentssdk

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/strongdm/apmcore/pkg/apm"
)

// Metadata keys set from the enrichment.
const (
	MetadataAgentName  = "agents.agent_name"
	MetadataModel      = "agents.model"
	MetadataToolName   = "agents.tool_name"
	MetadataErrorClass = "agents.error_class"
)

var guardrailPatterns = []string{
	"guardrail",
	"content policy",
	"safety filter",
	"blocked by policy",
}

// classifyError returns the error type of a run error.
func classifyError(err error) string {
	switch {
	case err == nil:
		return apm.ErrorTypeError
	case errors.Is(err, context.DeadlineExceeded):
		return apm.ErrorTypeTimeout
	case errors.Is(err, context.Canceled):
		return apm.ErrorTypeCanceled
	}

	msg := strings.ToLower(err.Error())
	for _, p := range guardrailPatterns {
		if strings.Contains(msg, p) {
			return apm.ErrorTypeGuardrail
		}
	}
	return apm.ErrorTypeError
}

// applyEnrichment copies what the hooks learned about the run into ev.
// Fields already set on ev are kept.
func applyEnrichment(ev *apm.ErrorEvent, e Enrichment) {
	if e.Operation != "" {
		ev.Operation = e.Operation
	}
	if ev.OperationID == "" {
		ev.OperationID = e.OperationID
	}
	if e.ErrorClass != "" && ev.ErrorType == apm.ErrorTypeDiagnostic {
		ev.ErrorType = e.ErrorClass
	}

	meta := map[string]string{
		MetadataAgentName:  e.AgentName,
		MetadataModel:      e.Model,
		MetadataToolName:   e.ToolName,
		MetadataErrorClass: e.ErrorClass,
	}
	if history := e.OperationHistory(); len(history) > 0 {
		if b, err := json.Marshal(history); err == nil {
			meta[HistoryMetadataKey] = string(b)
		}
	}

	for k, v := range meta {
		if v == "" {
			continue
		}
		if ev.Metadata == nil {
			ev.Metadata = make(map[string]string)
		}
		if _, ok := ev.Metadata[k]; !ok {
			ev.Metadata[k] = v
		}
	}
}
