package cxdb

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"
	cxdtypes "github.com/strongdm/ai-cxdb/clients/go/types"

	"github.com/strongdm/apmcore/pkg/apm"
)

// mockCXDBClient is a test double for the cxdb client.
type mockCXDBClient struct {
	mu             sync.Mutex
	createContexts []uint64 // baseTurnIDs passed to CreateContext
	appendRequests []*cxdbclient.AppendRequest
	nextContextID  uint64
	nextTurnID     uint64
	createErr      error
	appendErr      error
}

func (m *mockCXDBClient) CreateContext(ctx context.Context, baseTurnID uint64) (*cxdbclient.ContextHead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createContexts = append(m.createContexts, baseTurnID)
	m.nextContextID++
	return &cxdbclient.ContextHead{
		ContextID:  m.nextContextID,
		HeadTurnID: 0,
		HeadDepth:  0,
	}, nil
}

func (m *mockCXDBClient) AppendTurn(ctx context.Context, req *cxdbclient.AppendRequest) (*cxdbclient.AppendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	m.appendRequests = append(m.appendRequests, req)
	m.nextTurnID++
	return &cxdbclient.AppendResult{
		ContextID: req.ContextID,
		TurnID:    m.nextTurnID,
		Depth:     1,
	}, nil
}

func (m *mockCXDBClient) getAppendRequests() []*cxdbclient.AppendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*cxdbclient.AppendRequest, len(m.appendRequests))
	copy(result, m.appendRequests)
	return result
}

func (m *mockCXDBClient) getCreateContextCalls() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]uint64, len(m.createContexts))
	copy(result, m.createContexts)
	return result
}

func decodeConversationItem(t *testing.T, payload []byte) cxdtypes.ConversationItem {
	t.Helper()
	var item cxdtypes.ConversationItem
	require.NoError(t, cxdbclient.DecodeMsgpackInto(payload, &item))
	return item
}

func decodeDetailsJSON(t *testing.T, content string) map[string]any {
	t.Helper()
	var details map[string]any
	require.NoError(t, json.Unmarshal([]byte(content), &details))
	return details
}

func TestCXDBSink_ImplementsSinkInterface(t *testing.T) {
	var _ apm.Sink = NewCXDBSink(&mockCXDBClient{})
}

func TestCXDBSink_Write_WithContextID_AppendsTurn(t *testing.T) {
	client := &mockCXDBClient{}
	sink := NewCXDBSink(client)

	contextID := uint64(12345)
	err := sink.Write(context.Background(), apm.ErrorEvent{
		EventID:   "evt-123",
		Timestamp: time.Date(2025, 1, 26, 12, 0, 0, 0, time.UTC),
		Severity:  apm.SeverityError,
		ErrorType: apm.ErrorTypeException,
		Message:   "test error",
		RequestID: "req-1",
		ContextID: &contextID,
	})
	require.NoError(t, err)

	assert.Empty(t, client.getCreateContextCalls(), "explicit ContextID must not create a context")

	appendReqs := client.getAppendRequests()
	require.Len(t, appendReqs, 1)
	req := appendReqs[0]
	assert.Equal(t, uint64(12345), req.ContextID)
	assert.Equal(t, cxdtypes.TypeIDConversationItem, req.TypeID)
	assert.Equal(t, cxdtypes.TypeVersionConversationItem, req.TypeVersion)
	assert.Equal(t, "evt-123", req.IdempotencyKey)
}

func TestCXDBSink_Write_WithoutRequest_CreatesOrphan(t *testing.T) {
	client := &mockCXDBClient{}
	sink := NewCXDBSink(client)

	for i := 0; i < 2; i++ {
		require.NoError(t, sink.Write(context.Background(), apm.ErrorEvent{
			EventID:   "evt",
			Timestamp: time.Now(),
			Severity:  apm.SeverityError,
			ErrorType: "test",
		}))
	}

	assert.Len(t, client.getCreateContextCalls(), 2, "each unlinked event gets its own context")

	appendReqs := client.getAppendRequests()
	require.Len(t, appendReqs, 2)
	item := decodeConversationItem(t, appendReqs[0].Payload)
	require.NotNil(t, item.ContextMetadata)
	assert.Equal(t, "apmcore", item.ContextMetadata.ClientTag)
	assert.Equal(t, []string{"error", "unlinked"}, item.ContextMetadata.Labels)
}

func TestCXDBSink_Write_GroupsByRequest(t *testing.T) {
	client := &mockCXDBClient{}
	sink := NewCXDBSink(client)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, apm.ErrorEvent{EventID: "a1", RequestID: "req-a"}))
	require.NoError(t, sink.Write(ctx, apm.ErrorEvent{EventID: "b1", RequestID: "req-b"}))
	require.NoError(t, sink.Write(ctx, apm.ErrorEvent{EventID: "a2", RequestID: "req-a"}))

	assert.Len(t, client.getCreateContextCalls(), 2, "one context per request")

	reqs := client.getAppendRequests()
	require.Len(t, reqs, 3)

	a1, b1, a2 := reqs[0], reqs[1], reqs[2]
	assert.Equal(t, a1.ContextID, a2.ContextID)
	assert.NotEqual(t, a1.ContextID, b1.ContextID)
	assert.Equal(t, uint64(0), a1.ParentTurnID)
	assert.Equal(t, uint64(1), a2.ParentTurnID, "the second event chains on the first turn")

	assert.NotNil(t, decodeConversationItem(t, a1.Payload).ContextMetadata)
	assert.Nil(t, decodeConversationItem(t, a2.Payload).ContextMetadata, "metadata only on the first turn")
}

func TestCXDBSink_WithMaxTrackedRequests_ForgetsOldest(t *testing.T) {
	client := &mockCXDBClient{}
	sink := NewCXDBSink(client, WithMaxTrackedRequests(1))
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, apm.ErrorEvent{RequestID: "req-a"}))
	require.NoError(t, sink.Write(ctx, apm.ErrorEvent{RequestID: "req-b"}))
	require.NoError(t, sink.Write(ctx, apm.ErrorEvent{RequestID: "req-a"}))

	assert.Len(t, client.getCreateContextCalls(), 3)
}

func TestCXDBSink_Write_PayloadFormat_CanonicalTypes(t *testing.T) {
	client := &mockCXDBClient{}
	sink := NewCXDBSink(client)

	contextID := uint64(99)
	err := sink.Write(context.Background(), apm.ErrorEvent{
		EventID:     "evt-456",
		Timestamp:   time.Date(2025, 1, 26, 12, 0, 0, 0, time.UTC),
		Fingerprint: "fp123",
		Severity:    apm.SeverityError,
		ErrorType:   apm.ErrorTypeException,
		Message:     "SQLSTATE[HY000] general error",
		Operation:   apm.OperationCall,
		Class:       "PDO",
		Function:    "query",
		File:        "/srv/app/db.php",
		Line:        12,
		RequestID:   "req-9",
		ContextID:   &contextID,
	})
	require.NoError(t, err)

	appendReqs := client.getAppendRequests()
	require.Len(t, appendReqs, 1)
	item := decodeConversationItem(t, appendReqs[0].Payload)

	assert.Equal(t, cxdtypes.ItemTypeSystem, item.ItemType)
	assert.Equal(t, cxdtypes.ItemStatusComplete, item.Status)
	require.NotNil(t, item.System)
	assert.Equal(t, cxdtypes.SystemKindError, item.System.Kind)
	assert.Equal(t, "PDO::query: SQLSTATE[HY000] general error", item.System.Title)

	details := decodeDetailsJSON(t, item.System.Content)
	assert.Equal(t, "evt-456", details["event_id"])
	assert.Equal(t, "fp123", details["fingerprint"])
	assert.Equal(t, "call", details["operation"])
	assert.Equal(t, "PDO", details["class"])
	assert.Equal(t, "query", details["function"])
	assert.Equal(t, "req-9", details["request_id"])
	assert.Equal(t, float64(12), details["line"])

	assert.Nil(t, item.ContextMetadata, "existing contexts carry no context metadata")
}

func TestCXDBSink_Title_Diagnostic(t *testing.T) {
	event := apm.ErrorEvent{ErrorType: apm.ErrorTypeDiagnostic, Kind: apm.KindWarning, Message: "Division by zero"}
	assert.Equal(t, "warning: Division by zero", buildTitle(event))

	details := decodeDetailsJSON(t, buildErrorDetails(event))
	assert.Equal(t, float64(2), details["kind"])
	assert.Equal(t, "warning", details["kind_name"])
}

func TestCXDBSink_WithOrphanLabels_AndClientTag(t *testing.T) {
	client := &mockCXDBClient{}
	sink := NewCXDBSink(
		client,
		WithOrphanLabels([]string{"error", "critical"}),
		WithClientTag("apm-e2e"),
	)

	require.NoError(t, sink.Write(context.Background(), apm.ErrorEvent{
		EventID:   "evt-789",
		Severity:  apm.SeverityError,
		ErrorType: "test",
		Message:   "boom",
	}))

	appendReqs := client.getAppendRequests()
	require.Len(t, appendReqs, 1)
	item := decodeConversationItem(t, appendReqs[0].Payload)
	require.NotNil(t, item.ContextMetadata)
	assert.Equal(t, "apm-e2e", item.ContextMetadata.ClientTag)
	assert.Equal(t, []string{"error", "critical"}, item.ContextMetadata.Labels)
}

func TestCXDBSink_Write_PropagatesClientErrors(t *testing.T) {
	createErr := errors.New("cxdb down")
	sink := NewCXDBSink(&mockCXDBClient{createErr: createErr})
	assert.ErrorIs(t, sink.Write(context.Background(), apm.ErrorEvent{RequestID: "r"}), createErr)

	appendErr := errors.New("append refused")
	contextID := uint64(1)
	sink = NewCXDBSink(&mockCXDBClient{appendErr: appendErr})
	assert.ErrorIs(t, sink.Write(context.Background(), apm.ErrorEvent{ContextID: &contextID}), appendErr)
}

func TestCXDBSink_FlushAndClose(t *testing.T) {
	sink := NewCXDBSink(&mockCXDBClient{})
	assert.NoError(t, sink.Flush(context.Background()))
	assert.NoError(t, sink.Close())
}
