// Package stderr provides a sink that prints errors in human-readable form.
// Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/strongdm/apmcore/pkg/apm"
)

// StderrSinkOption configures the stderr sink.
type StderrSinkOption func(*stderrSinkConfig)

type stderrSinkConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose enables full error details including stack traces.
func WithVerbose() StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.verbose = true
	}
}

// WithWriter sends output to w instead of os.Stderr.
func WithWriter(w io.Writer) StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.out = w
	}
}

// stderrSink writes errors in human-readable format.
type stderrSink struct {
	verbose bool

	mu  sync.Mutex
	out io.Writer
}

// NewStderrSink creates a sink that writes to stderr.
func NewStderrSink(opts ...StderrSinkOption) apm.Sink {
	cfg := &stderrSinkConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrSink{
		verbose: cfg.verbose,
		out:     cfg.out,
	}
}

// Write formats and outputs the error event.
//
// Format:
//
//	[APM] <timestamp> <SEVERITY> <error_type> in <operation> <Class::function> (request: <id>)
func (s *stderrSink) Write(ctx context.Context, event apm.ErrorEvent) error {
	var b strings.Builder

	severity := strings.ToUpper(string(event.Severity))
	timestamp := event.Timestamp.Format("2006-01-02T15:04:05Z07:00")

	parts := []string{fmt.Sprintf("[APM] %s %s %s", timestamp, severity, event.ErrorType)}
	if event.Kind != 0 {
		parts = append(parts, fmt.Sprintf("[%s]", event.Kind))
	}
	if event.Operation != "" {
		parts = append(parts, "in "+event.Operation)
	}
	if fn := event.QualifiedFunction(); fn != "" {
		parts = append(parts, fn)
	}
	if event.RequestID != "" {
		parts = append(parts, fmt.Sprintf("(request: %s)", event.RequestID))
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteByte('\n')

	if event.Message != "" {
		fmt.Fprintf(&b, "        Message: %s\n", event.Message)
	}
	if event.File != "" {
		fmt.Fprintf(&b, "        Location: %s:%d\n", event.File, event.Line)
	}
	if event.Fingerprint != "" {
		fmt.Fprintf(&b, "        Fingerprint: %s\n", event.Fingerprint)
	}
	if event.TraceID != "" {
		fmt.Fprintf(&b, "        Trace: %s/%s\n", event.TraceID, event.SpanID)
	}
	if event.ContextID != nil {
		fmt.Fprintf(&b, "        Context: %d\n", *event.ContextID)
	}

	if s.verbose && event.StackTrace != "" {
		b.WriteString("        Stack trace:\n")
		for _, line := range strings.Split(event.StackTrace, "\n") {
			fmt.Fprintf(&b, "          %s\n", line)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, b.String())
	return err
}

// Flush is a no-op for stderr sink.
func (s *stderrSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for stderr sink.
func (s *stderrSink) Close() error {
	return nil
}
