package tracer

import "errors"

var (
	// ErrNestedTrace is returned when a trace starts on a goroutine that
	// already has an active session.
	ErrNestedTrace = errors.New("tracer: a tracing session is already active on this goroutine")
	// ErrNoActiveTrace is returned by session accessors when no session is
	// active on the calling goroutine.
	ErrNoActiveTrace = errors.New("tracer: no active tracing session")
	// ErrUnbalancedScope is returned when scopes are still pushed at the end
	// of a trace.
	ErrUnbalancedScope = errors.New("tracer: unbalanced push_scope/pop_scope in traced region")
	// ErrUntracedValue is returned when looking up a tensor the session has
	// never seen.
	ErrUntracedValue = errors.New("tracer: value was not traced")
	// ErrNoOutput is returned when the traced function returns nothing.
	ErrNoOutput = errors.New("tracer: the traced function produced no output; " +
		"mutations outside the return value are not captured, so the trace would be a no-op")
	// ErrApplyNotFound is returned when a foreign callable has no apply
	// routine.
	ErrApplyNotFound = errors.New("tracer: foreign callable has no apply target")
	// ErrUnsupportedInput is returned for trace inputs of unknown kinds.
	ErrUnsupportedInput = errors.New("tracer: unsupported trace input")
	// ErrUnsupportedOutput is returned for outputs that have no IR type.
	ErrUnsupportedOutput = errors.New("tracer: unsupported trace output")
	// ErrDanglingValue is returned when the finished graph references values
	// it does not own.
	ErrDanglingValue = errors.New("tracer: graph references a value produced outside it")
)
