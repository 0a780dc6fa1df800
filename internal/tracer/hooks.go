package tracer

import (
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/provenance"
)

// CallstackFunc returns the host program's current call stack, innermost
// frame first. It runs on every recorded op, so it should only capture;
// resolution is deferred by provenance.Stack.
type CallstackFunc func() provenance.Stack

// RecordSourceLocationFunc attaches provenance to a newly created node.
type RecordSourceLocationFunc func(n *ir.Node)

// WarnFunc receives non-fatal tracer diagnostics.
type WarnFunc func(reason string)

// hookTable holds the process-wide strategy slots. Slots are written by the
// host adapter at startup and read on every recorded op.
type hookTable struct {
	callstack      atomic.Pointer[CallstackFunc]
	recordLocation atomic.Pointer[RecordSourceLocationFunc]
	warn           atomic.Pointer[WarnFunc]
}

var hooks hookTable

func swap[T any](slot *atomic.Pointer[T], fn *T) T {
	var zero T
	prev := slot.Swap(fn)
	if prev == nil {
		return zero
	}
	return *prev
}

func ptr[T any](fn T, isNil bool) *T {
	if isNil {
		return nil
	}
	return &fn
}

// SetCallstack registers the call-stack provider and returns the previous
// one. A nil provider unregisters it.
func SetCallstack(fn CallstackFunc) CallstackFunc {
	return swap(&hooks.callstack, ptr(fn, fn == nil))
}

// SetRecordSourceLocation registers the source-location strategy and returns
// the previous one. A nil strategy restores the default, which builds a lazy
// provenance record from the call-stack provider.
func SetRecordSourceLocation(fn RecordSourceLocationFunc) RecordSourceLocationFunc {
	return swap(&hooks.recordLocation, ptr(fn, fn == nil))
}

// SetWarn registers the warning sink and returns the previous one. A nil
// sink drops warnings.
func SetWarn(fn WarnFunc) WarnFunc {
	return swap(&hooks.warn, ptr(fn, fn == nil))
}

// Callstack asks the registered provider for the current stack, nil if none
// is registered.
func Callstack() provenance.Stack {
	if fn := hooks.callstack.Load(); fn != nil {
		return (*fn)()
	}
	return nil
}

// RecordSourceLocation stamps n with provenance using the registered
// strategy.
func RecordSourceLocation(n *ir.Node) {
	if fn := hooks.recordLocation.Load(); fn != nil {
		(*fn)(n)
		return
	}
	defaultRecordSourceLocation(n)
}

func defaultRecordSourceLocation(n *ir.Node) {
	stack := Callstack()
	if stack == nil {
		return
	}
	n.SetSourceRange(ir.NewSourceRange(provenance.NewRecord(stack)))
}

// Warn forwards reason to the registered sink. It reports whether a sink
// received it.
func Warn(reason string) bool {
	if fn := hooks.warn.Load(); fn != nil {
		(*fn)(reason)
		return true
	}
	return false
}

// GoCallstack returns a provider capturing native Go stacks, skipping the
// tracer's own frames.
func GoCallstack(depth int) CallstackFunc {
	capturer := provenance.GoCapturer{
		Depth: depth,
		Skip: []string{
			modulePath + "/internal/tracer.",
			modulePath + "/internal/ops.",
			modulePath + "/internal/provenance.",
		},
	}
	return capturer.Capture
}

const modulePath = "github.com/GriffinCanCode/AgentOS/tracer"
