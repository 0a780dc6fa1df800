package tracer

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
)

// Argument tags of a foreign call's arg-type descriptor.
const (
	ArgTraced   = 'd'
	ArgConstant = 'c'
)

// Applier is the routine that reproduces a foreign call at runtime.
type Applier interface {
	Apply(ctx context.Context, args []any) (any, error)
}

// ApplyFunc adapts a function to Applier.
type ApplyFunc func(ctx context.Context, args []any) (any, error)

// Apply implements Applier.
func (f ApplyFunc) Apply(ctx context.Context, args []any) (any, error) {
	return f(ctx, args)
}

// ApplyProvider is implemented by host callables whose apply routine must be
// looked up (for example a script object with an "apply" property).
type ApplyProvider interface {
	ApplyTarget() (Applier, bool)
}

// ResolveApply returns the apply routine of target.
func ResolveApply(target any) (Applier, error) {
	switch t := target.(type) {
	case nil:
	case Applier:
		return t, nil
	case ApplyProvider:
		if a, ok := t.ApplyTarget(); ok && a != nil {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrApplyNotFound, target)
}

// RecordForeign inserts one opaque ForeignCall node. Every tensor in inputs
// must be traced; they become the node's input edges in order. The node has
// no outputs yet: callers add them once the call has produced its results.
func (s *State) RecordForeign(apply Applier, name, argTypes string, inputs []*tensor.Tensor, scalars []any) (*ir.Node, error) {
	n := s.graph.CreateForeignCall(ir.ForeignCall{
		Name:     name,
		ArgTypes: argTypes,
		Scalars:  scalars,
		Target:   apply,
	})
	for i, in := range inputs {
		v, err := s.GetValue(in)
		if err != nil {
			return nil, fmt.Errorf("foreign call %s input %d: %w", name, i, err)
		}
		n.AddInput(v)
	}
	if _, err := s.insert(n); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ForeignCallRecorded()
	}
	return n, nil
}

// CallForeign invokes target's apply routine with args. When the calling
// goroutine is tracing and any argument is traced, the call is recorded as
// a single ForeignCall node: traced tensors become edges, everything else is
// captured as an opaque scalar. Ops performed inside the routine are never
// recorded, even when no argument is traced. Tensors in the result are bound to the node's outputs, primary
// output first.
func CallForeign(ctx context.Context, target any, args ...any) (any, error) {
	apply, err := ResolveApply(target)
	if err != nil {
		return nil, err
	}

	s := Tracing(args...)
	if s == nil {
		// Nothing to record, but ops on tensors the routine captured
		// must still stay out of an active trace.
		if active := Current(); active != nil {
			return active.detached(ctx, func(ctx context.Context) (any, error) {
				return apply.Apply(ctx, args)
			})
		}
		return apply.Apply(ctx, args)
	}

	var (
		tags    strings.Builder
		inputs  []*tensor.Tensor
		scalars []any
	)
	for _, a := range args {
		if t, ok := a.(*tensor.Tensor); ok && s.HasValue(t) {
			tags.WriteByte(ArgTraced)
			inputs = append(inputs, t)
			continue
		}
		tags.WriteByte(ArgConstant)
		scalars = append(scalars, a)
	}

	n, err := s.RecordForeign(apply, displayName(target), tags.String(), inputs, scalars)
	if err != nil {
		return nil, err
	}

	result, err := s.detached(ctx, func(ctx context.Context) (any, error) {
		return apply.Apply(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("foreign call %s: %w", displayName(target), err)
	}

	leaves := flattenTensors(result)
	if len(leaves) == 0 {
		if t, err := InferType(result); err == nil {
			n.AddOutput(t)
		}
		return result, nil
	}
	for _, t := range leaves {
		s.SetValue(t, n.AddOutput(tensorType(t)))
	}
	return result, nil
}

// detached runs fn with s unpublished from the calling goroutine and from
// the context, restoring it on every exit path.
func (s *State) detached(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	prev := SetCurrent(nil)
	defer SetCurrent(prev)
	return fn(WithState(ctx, nil))
}

type named interface {
	Name() string
}

func displayName(target any) string {
	if n, ok := target.(named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", target)
}

func flattenTensors(v any) []*tensor.Tensor {
	switch x := v.(type) {
	case *tensor.Tensor:
		if x == nil {
			return nil
		}
		return []*tensor.Tensor{x}
	case []any:
		var out []*tensor.Tensor
		for _, e := range x {
			out = append(out, flattenTensors(e)...)
		}
		return out
	}
	return nil
}
