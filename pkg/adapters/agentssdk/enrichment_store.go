// enrichment_store.go holds what the run hooks learned about each run, keyed
// by request ID, until the run's scope reports an event.

package agentssdk

import "sync"

// Enrichment contains per-run context captured from hooks.
type Enrichment struct {
	AgentName string
	Model     string

	ToolName   string
	ToolCallID string

	// Operation is the operation in progress (tool, llm, handoff).
	Operation   string
	OperationID string

	// ErrorClass classifies the error the run returned, if any.
	ErrorClass string

	history *historyBuffer
}

// RecordOperation appends to the run's operation history.
func (e *Enrichment) RecordOperation(record OperationRecord) {
	if e.history == nil {
		e.history = newHistoryBuffer(defaultHistorySize)
	}
	e.history.Add(record)
}

// UpdateLastOperation applies fn to the most recent operation if it has the
// given kind.
func (e *Enrichment) UpdateLastOperation(kind string, fn func(*OperationRecord)) bool {
	if e.history == nil {
		return false
	}
	last := e.history.Last()
	if last == nil || last.Kind != kind {
		return false
	}
	fn(last)
	return true
}

// OperationHistory returns the operations oldest first; never nil.
func (e *Enrichment) OperationHistory() []OperationRecord {
	if e.history == nil {
		return []OperationRecord{}
	}
	return e.history.All()
}

// EnrichmentStore is a concurrency-safe map of run enrichments.
type EnrichmentStore interface {
	// Update applies fn to the enrichment of runID, creating it if needed.
	// fn runs under the store lock and must not call the store.
	Update(runID string, fn func(e *Enrichment))

	// Get returns a deep copy of the enrichment of runID.
	Get(runID string) (Enrichment, bool)

	Delete(runID string)
}

type inMemoryEnrichmentStore struct {
	mu   sync.RWMutex
	data map[string]*Enrichment
}

// NewEnrichmentStore creates an in-memory EnrichmentStore.
func NewEnrichmentStore() EnrichmentStore {
	return &inMemoryEnrichmentStore{
		data: make(map[string]*Enrichment),
	}
}

func (s *inMemoryEnrichmentStore) Update(runID string, fn func(e *Enrichment)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[runID]
	if !ok {
		e = &Enrichment{}
		s.data[runID] = e
	}
	fn(e)
}

func (s *inMemoryEnrichmentStore) Get(runID string) (Enrichment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[runID]
	if !ok {
		return Enrichment{}, false
	}
	c := *e
	c.history = e.history.clone()
	return c, true
}

func (s *inMemoryEnrichmentStore) Delete(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
}
