package request

import (
	"context"
	"log/slog"

	"github.com/strongdm/apmcore/pkg/apm"
	"github.com/strongdm/apmcore/pkg/hooking"
)

// AnnotateFunc enriches an event before it is recorded. Host adapters use it
// to attach what only they know.
type AnnotateFunc func(ctx context.Context, event *apm.ErrorEvent)

// Settings are the configuration values a Scope honours.
type Settings struct {
	// DisableCapture turns error reporting off.
	DisableCapture bool

	// MaxErrors caps the events recorded per request. Zero means no cap.
	MaxErrors int

	// StackTraceLimit caps the frames in a stack trace. Negative means all
	// frames, zero disables stack traces.
	StackTraceLimit int

	Service        string
	ServiceVersion string
	Environment    string
}

// DefaultSettings returns the settings of an unconfigured agent.
func DefaultSettings() Settings {
	return Settings{
		MaxErrors:       100,
		StackTraceLimit: 50,
	}
}

// Options configure Begin.
type Options struct {
	// Storage holds the hooks of the process. Nil means no function is
	// instrumented.
	Storage *hooking.Storage

	// Engine reports the executing frame. Nil gives the request a fresh
	// callstack.Stack, carried in the returned context.
	Engine hooking.Engine

	// Collector receives the request's events. Nil discards them.
	Collector apm.Collector

	// Logger is tagged with the request feature. Nil discards.
	Logger *slog.Logger

	Settings Settings

	Annotate AnnotateFunc
}
