// Package apm is the reporting pipeline behind a request scope: it turns the
// diagnostics and call outcomes the hooking core forwards into error events
// and hands them to pluggable sinks.
//
// # Core Components
//
//   - ErrorEvent: the canonical error representation with severity, host
//     diagnostic kind, call site, request and trace identifiers
//   - Kind: the host engine's diagnostic kinds and their severities
//   - Collector: applies scrubbing and fingerprinting before persistence
//   - Sink: destination for error events (cxdb, stderr, async, multi, noop)
//   - Scrubber: redacts sensitive data with fail-closed behavior
//
// # Quick Start
//
//	collector := apm.NewCollector(
//	    apm.WithSink(stderr.NewStderrSink()),
//	    apm.WithDefaultScrubbing(),
//	)
//	defer apm.Recover(ctx, collector)
//
// # Design Principles
//
//   - Reporting never aborts the host request: collector errors are logged by
//     callers and swallowed
//   - Fail-closed scrubbing: on any error, fields are fully redacted
//   - Sinks with external dependencies live in their own packages
package apm
