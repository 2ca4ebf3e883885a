// Package request ties the hooking runtime of one host request to the
// reporting pipeline.
//
// A Scope is opened with Begin when the host starts serving a request and
// closed with End when the request finishes. In between it:
//
//   - owns the request ID and the trace/span the request runs under
//   - receives the diagnostics the hooking.Observer forwards (HandleError)
//   - receives the outcomes of instrumented calls (RecordOutcome, or the
//     ready-made RecordingPost post-hook)
//   - turns both into apm.ErrorEvent values and hands them to the collector
//
// # Boundary Capture
//
// Errors that leave an instrumented call were already reported by its
// post-hook. Code that catches errors at the request boundary uses
// Scope.Observed to avoid reporting them twice.
//
// # Shutdown
//
// End ends every instrumented call still pending with a Fatal outcome, so
// post-hooks run even when the host aborts mid-call, then flushes the
// collector. Events arriving after End are rejected with ErrScopeEnded.
package request
