// event.go defines the canonical error event data structure.

package apm

import "time"

// Severity indicates the severity level of an error event.
type Severity string

const (
	// SeverityNotice indicates a diagnostic that does not affect execution
	// (notices, strict-mode and deprecation messages).
	SeverityNotice Severity = "notice"

	// SeverityWarning indicates a non-fatal issue that may need attention.
	SeverityWarning Severity = "warning"

	// SeverityError indicates a recoverable error that caused an operation to fail.
	SeverityError Severity = "error"

	// SeverityCrash indicates an unrecoverable error such as a fatal
	// diagnostic or a panic.
	SeverityCrash Severity = "crash"
)

var severityRank = map[Severity]int{
	SeverityNotice:  1,
	SeverityWarning: 2,
	SeverityError:   3,
	SeverityCrash:   4,
}

// AtLeast reports whether s is as severe as min. An empty min accepts
// everything; unknown severities rank as errors.
func (s Severity) AtLeast(min Severity) bool {
	if min == "" {
		return true
	}
	return rank(s) >= rank(min)
}

func rank(s Severity) int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return severityRank[SeverityError]
}

// Error types.
const (
	ErrorTypeDiagnostic = "diagnostic"
	ErrorTypeException  = "exception"
	ErrorTypePanic      = "panic"
	ErrorTypeFatal      = "fatal"
	ErrorTypeTimeout    = "timeout"
	ErrorTypeCanceled   = "canceled"
	ErrorTypeGuardrail  = "guardrail"
	ErrorTypeError      = "error"
)

// Operations.
const (
	OperationDiagnostic = "diagnostic"
	OperationCall       = "call"
	OperationRequest    = "request"
	OperationTool       = "tool"
	OperationLLM        = "llm"
)

// SystemState captures system metrics at the time of an error.
type SystemState struct {
	// MemoryBytes is the current Go heap allocation in bytes.
	MemoryBytes int64

	// RSSBytes is the resident set size of the process.
	RSSBytes int64

	// ThreadCount is the number of OS threads of the process.
	ThreadCount int32

	// GoroutineCount is the number of active goroutines.
	GoroutineCount int

	// UptimeMs is the process uptime in milliseconds.
	UptimeMs int64

	// HostName is the hostname of the machine where the error occurred.
	HostName string
}

// ErrorEvent is the canonical error representation.
// All fields are populated by the request scope and collector before
// reaching sinks.
type ErrorEvent struct {
	// Identity fields

	// EventID is a unique identifier for this error event (UUID).
	EventID string

	// Timestamp is when the error occurred.
	Timestamp time.Time

	// Fingerprint is a hash for grouping similar errors.
	Fingerprint string

	// Error details

	// Severity indicates the error severity.
	Severity Severity

	// ErrorType categorizes the error (diagnostic, exception, panic, fatal,
	// timeout, canceled, guardrail, error).
	ErrorType string

	// Kind is the host diagnostic kind. Zero for events that are not host
	// diagnostics.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// StackTrace is the optional scrubbed stack trace.
	StackTrace string

	// Source location

	// File is the script file the diagnostic was raised in.
	File string

	// Line is the line the diagnostic was raised at.
	Line int

	// Class and Function name the instrumented callable whose outcome this
	// event reports, if any.
	Class    string
	Function string

	// Operation context

	// Operation indicates what was happening (diagnostic, call, request, tool, llm).
	Operation string

	// OperationID is an optional identifier (e.g., tool call ID).
	OperationID string

	// Request context

	// RequestID identifies the host request the error belongs to.
	RequestID string

	// TraceID and SpanID link the error to the active trace, if any.
	TraceID string
	SpanID  string

	// Service is the name of the reporting service.
	Service string

	// Environment is the deployment environment of the service.
	Environment string

	// ContextID is the optional cxdb context ID for linking to conversation.
	// Uses pointer to distinguish "not set" from "zero value".
	ContextID *uint64

	// System state

	// SystemState captures system metrics at error time.
	SystemState *SystemState

	// Arbitrary metadata

	// Metadata contains scrubbed key-value pairs for additional context.
	Metadata map[string]string
}

// QualifiedFunction returns Class::Function, or Function for bare functions.
func (e ErrorEvent) QualifiedFunction() string {
	if e.Class == "" {
		return e.Function
	}
	return e.Class + "::" + e.Function
}
