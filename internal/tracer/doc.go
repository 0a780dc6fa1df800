// Package tracer records one concrete run of a computation as an IR graph.
//
// # Sessions
//
// A State is one tracing session: the graph being built, the value table
// mapping runtime tensors to the IR value that currently represents them,
// and the session modes (strict, force-outplace). Trace and TraceKeyed
// create a session, publish it for the calling goroutine, run the user
// function and return the finished session with the flat outputs.
//
// Interception does not need the traced code's cooperation: primitive ops
// (package ops) ask Current() for the calling goroutine's session and record
// themselves when any operand is traced. The session also travels in the
// context handed to the traced function (FromContext).
//
// # Hooks
//
// Hosts customize three process-wide slots once at startup:
//
//	tracer.SetCallstack(provider)          // where am I in the host program?
//	tracer.SetRecordSourceLocation(fn)     // how nodes get provenance
//	tracer.SetWarn(sink)                   // where diagnostics go
//
// Unset slots degrade: unknown node locations, dropped warnings.
//
// # Errors
//
// Usage errors (nested trace, unbalanced scopes, untraced lookups, empty
// result, unresolvable foreign target) abort the trace and no graph is
// returned. Strict-mode divergence and ambiguous in-place mutation are
// reported as warnings and never abort.
package tracer
