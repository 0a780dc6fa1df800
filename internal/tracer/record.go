package tracer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/logging"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
)

// Tracing returns the calling goroutine's session if any of args is a
// tensor bound in it, nil otherwise. Primitive ops call it first and skip
// recording on nil.
func Tracing(args ...any) *State {
	s := Current()
	if s == nil {
		return nil
	}
	for _, a := range args {
		if t, ok := a.(*tensor.Tensor); ok && s.HasValue(t) {
			return s
		}
	}
	return nil
}

// Record appends a node of the given kind consuming args and binds outputs
// to its results. Traced tensors become edges from their current values;
// untraced tensors and Go scalars become constants.
func (s *State) Record(kind ir.Kind, args []any, outputs ...*tensor.Tensor) (*ir.Node, error) {
	inputs, err := s.argValues(args)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", kind, err)
	}

	types := make([]ir.Type, len(outputs))
	for i, out := range outputs {
		types[i] = tensorType(out)
	}

	n := s.graph.Create(kind, inputs, types...)
	if _, err := s.insert(n); err != nil {
		return nil, err
	}
	for i, out := range outputs {
		s.SetValue(out, n.Outputs()[i])
	}
	return n, nil
}

// RecordInplace records a mutation of self. Unless force-outplace is set the
// node is marked in-place; either way self is rebound to the node's output so
// later reads observe the mutation.
func (s *State) RecordInplace(kind ir.Kind, self *tensor.Tensor, args ...any) (*ir.Node, error) {
	selfValue, err := s.value(self)
	if err != nil {
		return nil, fmt.Errorf("record %s_: %w", kind, err)
	}
	rest, err := s.argValues(args)
	if err != nil {
		return nil, fmt.Errorf("record %s_: %w", kind, err)
	}

	if !s.forceOutplace && selfValue.IsInput() {
		s.Warn(fmt.Sprintf("in-place %s_ mutates graph input %s; the trace records the new value "+
			"but the caller's input is modified as well. Trace with force_outplace to record it as a fresh value",
			kind, selfValue))
	}

	n := s.graph.Create(kind, append([]*ir.Value{selfValue}, rest...), tensorType(self))
	n.SetInplace(!s.forceOutplace)
	if _, err := s.insert(n); err != nil {
		return nil, err
	}
	s.SetValue(self, n.Output())
	return n, nil
}

// NoteDataDependence reports that the traced program read a traced tensor's
// data into a Go value (what names the target type). Control flow depending
// on it is baked into the trace, so strict sessions warn.
func (s *State) NoteDataDependence(t *tensor.Tensor, what string) {
	if !s.strict || !s.HasValue(t) {
		return
	}
	v := s.values[t]
	s.Warn(fmt.Sprintf("converting traced tensor %s to a Go %s; the result is treated as a constant, "+
		"so this trace might not generalize to other inputs", v, what))
}

// Constant inserts a constant node for value and returns its output.
func (s *State) Constant(value any) (*ir.Value, error) {
	t, err := InferType(value)
	if err != nil {
		return nil, err
	}
	if tt, ok := value.(*tensor.Tensor); ok {
		value = tt.Clone()
	}
	n := s.graph.CreateConstant(value, t)
	if _, err := s.insert(n); err != nil {
		return nil, err
	}
	return n.Output(), nil
}

func (s *State) value(arg any) (*ir.Value, error) {
	if t, ok := arg.(*tensor.Tensor); ok {
		if v, ok := s.values[t]; ok {
			return v, nil
		}
	}
	return s.Constant(arg)
}

func (s *State) argValues(args []any) ([]*ir.Value, error) {
	out := make([]*ir.Value, len(args))
	for i, a := range args {
		v, err := s.value(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// insert stamps provenance on n and appends it to the graph.
func (s *State) insert(n *ir.Node) (*ir.Node, error) {
	if s.provenance {
		RecordSourceLocation(n)
	}
	if _, err := s.graph.Insert(n); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.NodeRecorded(n.Kind().String())
	}
	if ce := s.logger.Check(zap.DebugLevel, "node recorded"); ce != nil {
		ce.Write(logging.NodeKind(n.Name()), zap.String("scope", n.Scope().String()))
	}
	return n, nil
}

func tensorType(t *tensor.Tensor) ir.Type {
	return ir.TensorType{Shape: t.Shape()}
}

// InferType derives the IR type of a runtime value.
func InferType(v any) (ir.Type, error) {
	switch x := v.(type) {
	case *tensor.Tensor:
		if x == nil {
			return nil, fmt.Errorf("%w: nil tensor", ErrUnsupportedOutput)
		}
		return tensorType(x), nil
	case float64, float32:
		return ir.Float, nil
	case int, int32, int64:
		return ir.Int, nil
	case bool:
		return ir.Bool, nil
	case string:
		return ir.String, nil
	case []any:
		elems := make([]ir.Type, len(x))
		for i, e := range x {
			t, err := InferType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return ir.TupleType{Elems: elems}, nil
	case map[string]any:
		var valueType ir.Type = ir.None
		if keys := sortedKeys(x); len(keys) > 0 {
			t, err := InferType(x[keys[0]])
			if err != nil {
				return nil, err
			}
			valueType = t
		}
		return ir.DictType{Value: valueType}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedOutput, v)
}
