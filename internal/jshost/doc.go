/*
Package jshost runs JavaScript programs under the tracer.

# Overview

A Runtime wraps one goja VM. Scripts see a small tensor API backed by Go:

	tensor(data, shape)      // new tensor, shape optional
	zeros(...dims)
	ops.add(a, b), ops.addScalar(a, 1), ops.matMul(a, b), ops.item(t), ...
	tracer.scope(name, fn)   // run fn with nodes tagged by a named scope
	tracer.foreign(f, ...)   // call f as one opaque graph node
	tracer.isTracing(), tracer.setStrict(b), tracer.setForceOutplace(b)
	tracer.graph()           // graph recorded so far, as text
	console.log/warn/error/info

Every op is intercepted by package ops, so the same script runs traced or
untraced. Trace loads a script, looks up its entry function and traces one
call of it.

# Hooks

Install registers the process-wide tracer hooks once:

  - the call-stack provider captures the JS stack of the runtime active on
    the calling goroutine, so nodes point at script lines
  - the warning sink collects TracerWarning diagnostics on that runtime and
    forwards them to the script's console.warn

Both hooks take the runtime's host lock, which is reentrant for the
goroutine already executing the script.

# Foreign calls

tracer.foreign accepts an object with an apply method (for example a class
with a static apply) or a plain function. The call becomes one
prim::ForeignCall node whose inputs are the traced tensor arguments; ops
run inside it are not recorded.

# Pooling

Pool keeps a fixed number of runtimes and resets each one on release, so
jobs never share script globals. Calls go through a circuit breaker: after
BreakerTrips consecutive execution timeouts the pool rejects work with
resilience.ErrCircuitOpen for BreakerCooldown. Script errors and context
cancellation do not count.
*/
package jshost
