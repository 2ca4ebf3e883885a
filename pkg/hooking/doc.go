// Package hooking is the instrumentation core of the agent: it decides which
// executing functions are instrumented, runs their pre/post hooks, and
// intercepts the host engine's diagnostic channel.
//
// # Core Components
//
//   - FunctionKey: a 64-bit key identifying a class::function pair, derived by
//     the engine adapter or by KeyOf
//   - Storage: FunctionKey to Entry map, written once during setup and sealed
//   - Interceptor: runs pre-hooks before and post-hooks after an instrumented
//     call; the post-hook runs exactly once on every exit path
//   - Observer: per-request error interceptor; forwards host diagnostics to an
//     ErrorHandler unless the current function is instrumented (its post-hook
//     reports the failure) or the observer is already forwarding an event
//   - Module: registers the error callback with the host's DiagnosticChannel
//     once per process and routes events to the request's Runtime
//
// # Engine Adapter
//
// The host engine's frame representation is opaque. An Engine implementation
// exposes the current frame and, per frame, its key and class/function names.
// See package callstack for a reference implementation.
//
// # Request Locality
//
// A Runtime bundles the Storage, Interceptor and Observer of one request and
// travels in the request's context.Context. The re-entrancy guard lives in
// the Observer, so one request's error handling never suppresses another's.
//
// # Failure Policy
//
// Nothing in this package surfaces an error to the host. Hook failures and
// panics are logged and contained; correlation failures fall back to
// forwarding; re-entrant events are logged and dropped.
package hooking
