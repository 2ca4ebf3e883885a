// instrument.go provides Instrument, the entry point for reporting the errors
// of agent runs.

package agentssdk

import (
	"log/slog"

	"github.com/strongdm/apmcore/pkg/apm"
	"github.com/strongdm/apmcore/pkg/hooking"
	"github.com/strongdm/apmcore/pkg/logging"
	"github.com/strongdm/apmcore/pkg/request"
)

// WrapOption configures a WrappedRunner.
type WrapOption func(*WrappedRunner)

// WithLogger sets the logger of the wrapper and of the scopes it opens.
func WithLogger(logger *slog.Logger) WrapOption {
	return func(w *WrappedRunner) {
		w.logger = logger
	}
}

// WithEnrichmentStore sets the store correlating hook data with events.
func WithEnrichmentStore(store EnrichmentStore) WrapOption {
	return func(w *WrappedRunner) {
		w.enrichments = store
	}
}

// WithStorage sets the hook storage of the runs. InstrumentTools registers
// into it; seal it before the first run.
func WithStorage(storage *hooking.Storage) WrapOption {
	return func(w *WrappedRunner) {
		w.storage = storage
	}
}

// WithSettings sets the request settings of every run.
func WithSettings(settings request.Settings) WrapOption {
	return func(w *WrappedRunner) {
		w.settings = settings
	}
}

// WithScrubber sets the scrubbing of tool input and output recorded in the
// operation history.
func WithScrubber(cfg apm.ScrubberConfig) WrapOption {
	return func(w *WrappedRunner) {
		w.scrubber = apm.NewScrubber(cfg)
	}
}

// Instrument wraps a Runner with error and panic capture.
//
// Example:
//
//	storage := hooking.NewStorage()
//	wrapped := agentssdk.Instrument(agents.NewRunner(client), collector,
//		agentssdk.WithStorage(storage))
//	wrapped.InstrumentTools(tools...)
//	storage.Seal()
//
//	agent := agents.NewAgent(agents.AgentConfig{Tools: agentssdk.WrapTools(tools...)})
//	result, err := wrapped.Run(ctx, agent, input, session, nil)
func Instrument(baseRunner Runner, collector apm.Collector, opts ...WrapOption) *WrappedRunner {
	w := &WrappedRunner{
		inner:       baseRunner,
		collector:   collector,
		enrichments: NewEnrichmentStore(),
		settings:    request.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.enrichments == nil {
		w.enrichments = NewEnrichmentStore()
	}
	if w.scrubber == nil {
		w.scrubber = apm.NewScrubber(apm.DefaultScrubberConfig())
	}
	w.logger = logging.OrDiscard(w.logger)
	return w
}
