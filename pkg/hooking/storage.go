// storage.go holds the registry of instrumented callables.

package hooking

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/strongdm/apmcore/pkg/logging"
	"github.com/strongdm/apmcore/pkg/wildcard"
)

// PreHook runs before an instrumented call. It may rewrite call.Args.
type PreHook func(ctx context.Context, call *Call) error

// PostHook runs after an instrumented call. It may rewrite out.Return.
type PostHook func(ctx context.Context, call *Call, out *Outcome) error

// Callbacks is one pre/post pair registered by an instrumentation.
type Callbacks struct {
	Instrumentation string
	Pre             PreHook
	Post            PostHook
}

// Entry is an instrumented callable and the hooks registered for it.
type Entry struct {
	Class    string
	Function string
	Hooks    []Callbacks
}

// Storage maps FunctionKey to the entries registered under it. Keys are not
// trusted to be unique, so each key holds a chain compared by name.
//
// Storage is written during setup and sealed before the first call is
// dispatched. Find and Match are safe for concurrent use once sealed.
type Storage struct {
	mu       sync.Mutex
	entries  map[FunctionKey][]*Entry
	count    int
	sealed   atomic.Bool
	disabled wildcard.List
	logger   *slog.Logger
}

// NewStorage creates an empty, unsealed Storage.
func NewStorage(opts ...Option) *Storage {
	o := applyOptions(opts)
	return &Storage{
		entries:  make(map[FunctionKey][]*Entry),
		disabled: o.disabled,
		logger:   o.logger,
	}
}

// Insert registers entry under key. Hooks of an entry already registered
// under the same names are appended to it.
func (s *Storage) Insert(key FunctionKey, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed.Load() {
		return ErrStorageSealed
	}
	for _, existing := range s.entries[key] {
		if existing.Class == entry.Class && existing.Function == entry.Function {
			existing.Hooks = append(existing.Hooks, entry.Hooks...)
			return nil
		}
	}
	e := entry
	e.Hooks = append([]Callbacks(nil), entry.Hooks...)
	s.entries[key] = append(s.entries[key], &e)
	s.count++
	return nil
}

// Hook registers pre and post for class::function on behalf of
// instrumentation. It reports whether the hook was registered; hooks of
// disabled instrumentations, hooks with no callbacks and hooks arriving
// after Seal are refused.
func (s *Storage) Hook(instrumentation, class, function string, pre PreHook, post PostHook) bool {
	if function == "" || (pre == nil && post == nil) {
		return false
	}
	if s.disabled.Match(instrumentation) {
		s.logger.Debug("instrumentation disabled",
			"instrumentation", instrumentation,
			"class", class,
			"function", function)
		return false
	}

	key := KeyOf(class, function)
	err := s.Insert(key, Entry{
		Class:    class,
		Function: function,
		Hooks:    []Callbacks{{Instrumentation: instrumentation, Pre: pre, Post: post}},
	})
	if err != nil {
		s.logger.Warn("hook not registered",
			"instrumentation", instrumentation,
			"class", class,
			"function", function,
			"error", err)
		return false
	}
	s.logger.Debug("hook registered",
		"instrumentation", instrumentation,
		"class", class,
		"function", function,
		"key", key)
	return true
}

// Seal ends setup. Later inserts fail with ErrStorageSealed.
func (s *Storage) Seal() {
	s.mu.Lock()
	s.sealed.Store(true)
	s.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (s *Storage) Sealed() bool {
	return s.sealed.Load()
}

// Len returns the number of instrumented callables.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Find returns the first entry registered under key. This is the miss path
// of every call and never allocates.
func (s *Storage) Find(key FunctionKey) (*Entry, bool) {
	chain := s.entries[key]
	if len(chain) == 0 {
		return nil, false
	}
	return chain[0], true
}

// Match returns the entry of the callable executing in frame. A key hit is
// confirmed by comparing names, so a key collision never yields another
// callable's hooks.
func (s *Storage) Match(engine Engine, frame FrameHandle) (*Entry, bool) {
	key, ok := ComputeKey(engine, frame)
	if !ok {
		return nil, false
	}
	return s.MatchKey(key, engine, frame)
}

// MatchKey is Match for a key the caller already computed.
func (s *Storage) MatchKey(key FunctionKey, engine Engine, frame FrameHandle) (*Entry, bool) {
	chain := s.entries[key]
	if len(chain) == 0 {
		return nil, false
	}
	class, function := engine.FunctionName(frame)
	for _, e := range chain {
		if e.Class == class && e.Function == function {
			return e, true
		}
	}
	logging.Trace(context.Background(), s.logger, "key collision",
		"key", key,
		"class", class,
		"function", function)
	return nil, false
}
