// Package logging maps the agent's log levels onto log/slog and builds the
// loggers handed to the rest of the module.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is an agent log level. Higher values are more verbose.
type Level int

const (
	LevelOff Level = iota
	LevelCritical
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
	LevelTrace
)

// slog levels for the agent levels that slog does not define.
const (
	slogTrace    = slog.LevelDebug - 4
	slogCritical = slog.LevelError + 4
	slogOff      = slog.Level(1 << 10)
)

var levelNames = []string{"off", "critical", "error", "warning", "info", "debug", "trace"}

// String returns the lower-case level name.
func (l Level) String() string {
	if l < LevelOff || int(l) >= len(levelNames) {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses a level name case-insensitively. "warn" is accepted as an
// alias of "warning".
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warn" {
		return LevelWarning, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("unknown log level %q", s)
}

// SlogLevel converts l to the slog level that admits exactly the records at
// l or more severe.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelCritical:
		return slogCritical
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	case LevelTrace:
		return slogTrace
	default:
		return slogOff
	}
}

// Options configures New.
type Options struct {
	// Level is the most verbose level written. Zero value disables logging.
	Level Level

	// Output defaults to os.Stderr.
	Output io.Writer

	// JSON switches the handler from text to JSON records.
	JSON bool
}

// New returns a logger writing records at opts.Level or more severe.
func New(opts Options) *slog.Logger {
	if opts.Level == LevelOff {
		return Discard()
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level.SlogLevel(),
		ReplaceAttr: replaceLevelName,
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// replaceLevelName prints the agent level names instead of slog's DEBUG-4 style.
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case lvl <= slogTrace:
		a.Value = slog.StringValue("TRACE")
	case lvl >= slogCritical:
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slogOff}))
}

// OrDiscard returns logger, or Discard() when logger is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// Enabled reports whether logger would write a record at level. Callers use
// it to skip building expensive debug attributes.
func Enabled(ctx context.Context, logger *slog.Logger, level Level) bool {
	if logger == nil || level == LevelOff {
		return false
	}
	return logger.Enabled(ctx, level.SlogLevel())
}

// Trace logs at trace level.
func Trace(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	logger.Log(ctx, slogTrace, msg, args...)
}

// Feature attribute values.
const (
	FeatureHooks   = "hooks"
	FeatureRequest = "request"
	FeatureConfig  = "config"
	FeatureReport  = "reporting"
)

// ForFeature tags every record of logger with the feature it belongs to.
func ForFeature(logger *slog.Logger, feature string) *slog.Logger {
	return OrDiscard(logger).With(slog.String("feature", feature))
}
