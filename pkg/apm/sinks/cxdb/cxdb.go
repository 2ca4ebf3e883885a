// Package cxdb provides a sink that persists errors to cxdb as SystemMessage
// items. Events of one request share a cxdb context and form a turn chain.
package cxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"
	cxdtypes "github.com/strongdm/ai-cxdb/clients/go/types"

	"github.com/strongdm/apmcore/pkg/apm"
)

// CXDBClient is the minimal interface for cxdb client operations.
// The real *cxdb.Client satisfies this interface.
type CXDBClient interface {
	CreateContext(ctx context.Context, baseTurnID uint64) (*cxdbclient.ContextHead, error)
	AppendTurn(ctx context.Context, req *cxdbclient.AppendRequest) (*cxdbclient.AppendResult, error)
}

// CXDBSinkOption configures the CXDB sink.
type CXDBSinkOption func(*cxdbSinkConfig)

type cxdbSinkConfig struct {
	orphanLabels []string
	clientTag    string
	maxRequests  int
}

// WithOrphanLabels sets labels for contexts created by the sink.
func WithOrphanLabels(labels []string) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.orphanLabels = labels
	}
}

// WithClientTag sets the client tag for contexts created by the sink.
func WithClientTag(tag string) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.clientTag = tag
	}
}

// WithMaxTrackedRequests bounds how many request contexts are remembered
// (default: 1024). The oldest request is forgotten first.
func WithMaxTrackedRequests(n int) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		if n > 0 {
			c.maxRequests = n
		}
	}
}

// requestContext is the cxdb context a request's events are appended to.
type requestContext struct {
	contextID  uint64
	headTurnID uint64
}

// cxdbSink writes errors to cxdb as SystemMessage items.
type cxdbSink struct {
	client       CXDBClient
	orphanLabels []string
	clientTag    string
	maxRequests  int

	mu       sync.Mutex
	requests map[string]*requestContext
	order    []string
}

// NewCXDBSink creates a sink that writes to cxdb.
func NewCXDBSink(client CXDBClient, opts ...CXDBSinkOption) apm.Sink {
	cfg := &cxdbSinkConfig{
		orphanLabels: []string{"error", "unlinked"},
		clientTag:    "apmcore",
		maxRequests:  1024,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &cxdbSink{
		client:       client,
		orphanLabels: cfg.orphanLabels,
		clientTag:    cfg.clientTag,
		maxRequests:  cfg.maxRequests,
		requests:     make(map[string]*requestContext),
	}
}

// Write persists an error event to cxdb.
//
// An explicit ContextID wins. Otherwise the event joins the context of its
// request, created on the request's first event. Events with neither get a
// context of their own.
func (s *cxdbSink) Write(ctx context.Context, event apm.ErrorEvent) error {
	if event.ContextID != nil {
		_, err := s.append(ctx, *event.ContextID, 0, event, false)
		return err
	}

	if event.RequestID == "" {
		head, err := s.client.CreateContext(ctx, 0)
		if err != nil {
			return fmt.Errorf("create orphan context: %w", err)
		}
		_, err = s.append(ctx, head.ContextID, 0, event, true)
		return err
	}

	// The lock is held across the round trip so a request's turns stay
	// ordered.
	s.mu.Lock()
	defer s.mu.Unlock()

	rc, ok := s.requests[event.RequestID]
	if !ok {
		head, err := s.client.CreateContext(ctx, 0)
		if err != nil {
			return fmt.Errorf("create request context: %w", err)
		}
		rc = &requestContext{contextID: head.ContextID, headTurnID: head.HeadTurnID}
		s.remember(event.RequestID, rc)
	}

	res, err := s.append(ctx, rc.contextID, rc.headTurnID, event, !ok)
	if err != nil {
		return err
	}
	rc.headTurnID = res.TurnID
	return nil
}

// remember records rc, forgetting the oldest request when full. Callers hold mu.
func (s *cxdbSink) remember(requestID string, rc *requestContext) {
	if len(s.order) >= s.maxRequests {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.requests, oldest)
	}
	s.requests[requestID] = rc
	s.order = append(s.order, requestID)
}

func (s *cxdbSink) append(ctx context.Context, contextID, parentTurnID uint64, event apm.ErrorEvent, created bool) (*cxdbclient.AppendResult, error) {
	item := s.buildConversationItem(event, created)

	payload, err := cxdbclient.EncodeMsgpack(item)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req := &cxdbclient.AppendRequest{
		ContextID:      contextID,
		ParentTurnID:   parentTurnID,
		TypeID:         cxdtypes.TypeIDConversationItem,
		TypeVersion:    cxdtypes.TypeVersionConversationItem,
		Payload:        payload,
		IdempotencyKey: event.EventID,
	}

	res, err := s.client.AppendTurn(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}
	return res, nil
}

// buildConversationItem creates a canonical ConversationItem from an ErrorEvent.
// Contexts the sink created get ContextMetadata on their first turn.
func (s *cxdbSink) buildConversationItem(event apm.ErrorEvent, created bool) *cxdtypes.ConversationItem {
	item := &cxdtypes.ConversationItem{
		ItemType:  cxdtypes.ItemTypeSystem,
		Status:    cxdtypes.ItemStatusComplete,
		Timestamp: event.Timestamp.UnixMilli(),
		ID:        event.EventID,
		System: &cxdtypes.SystemMessage{
			Kind:    cxdtypes.SystemKindError,
			Title:   buildTitle(event),
			Content: buildErrorDetails(event),
		},
	}

	if created {
		item.ContextMetadata = &cxdtypes.ContextMetadata{
			Labels:    s.orphanLabels,
			ClientTag: s.clientTag,
		}
	}

	return item
}

// buildTitle returns "<label>: <message>" truncated to 100 characters. The
// label is the function for instrumented calls, the diagnostic kind for host
// diagnostics, and the error type otherwise.
func buildTitle(event apm.ErrorEvent) string {
	label := event.ErrorType
	switch {
	case event.Function != "":
		label = event.QualifiedFunction()
	case event.Kind != 0:
		label = event.Kind.String()
	}

	title := label
	if event.Message != "" {
		const maxMsgLen = 80
		msg := event.Message
		if len(msg) > maxMsgLen {
			msg = msg[:maxMsgLen] + "..."
		}
		title = label + ": " + msg
	}
	if len(title) > 100 {
		title = title[:97] + "..."
	}
	return title
}

// buildErrorDetails encodes the full ErrorEvent as JSON for SystemMessage.Content.
func buildErrorDetails(event apm.ErrorEvent) string {
	details := map[string]any{
		"event_id":    event.EventID,
		"timestamp":   event.Timestamp.UnixMilli(),
		"severity":    string(event.Severity),
		"error_type":  event.ErrorType,
		"message":     event.Message,
		"fingerprint": event.Fingerprint,
		"operation":   event.Operation,
	}

	optional := map[string]string{
		"stack_trace":  event.StackTrace,
		"operation_id": event.OperationID,
		"file":         event.File,
		"class":        event.Class,
		"function":     event.Function,
		"request_id":   event.RequestID,
		"trace_id":     event.TraceID,
		"span_id":      event.SpanID,
		"service":      event.Service,
		"environment":  event.Environment,
	}
	for k, v := range optional {
		if v != "" {
			details[k] = v
		}
	}

	if event.Kind != 0 {
		details["kind"] = int(event.Kind)
		details["kind_name"] = event.Kind.String()
	}
	if event.Line > 0 {
		details["line"] = event.Line
	}
	if event.ContextID != nil {
		details["context_id"] = *event.ContextID
	}
	if event.SystemState != nil {
		details["system_state"] = map[string]any{
			"memory_bytes":    event.SystemState.MemoryBytes,
			"rss_bytes":       event.SystemState.RSSBytes,
			"thread_count":    event.SystemState.ThreadCount,
			"goroutine_count": event.SystemState.GoroutineCount,
			"uptime_ms":       event.SystemState.UptimeMs,
			"host_name":       event.SystemState.HostName,
		}
	}
	if len(event.Metadata) > 0 {
		details["metadata"] = event.Metadata
	}

	jsonBytes, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to encode details: %s"}`, err)
	}
	return string(jsonBytes)
}

// Flush is a no-op for the cxdb sink (writes are synchronous).
func (s *cxdbSink) Flush(ctx context.Context) error {
	return nil
}

// Close forgets every tracked request.
func (s *cxdbSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = make(map[string]*requestContext)
	s.order = nil
	return nil
}
