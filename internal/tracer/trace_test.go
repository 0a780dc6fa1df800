package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/ops"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

func kinds(g *ir.Graph) []ir.Kind {
	out := make([]ir.Kind, 0, len(g.Nodes()))
	for _, n := range g.Nodes() {
		out = append(out, n.Kind())
	}
	return out
}

// collectWarnings installs a warning sink for the duration of the test.
func collectWarnings(t *testing.T) *[]string {
	t.Helper()
	var got []string
	prev := tracer.SetWarn(func(reason string) { got = append(got, reason) })
	t.Cleanup(func() { tracer.SetWarn(prev) })
	return &got
}

func addOne(ctx context.Context, inputs []any) (any, error) {
	return ops.AddScalar(inputs[0].(*tensor.Tensor), 1)
}

func TestTracePositionalInputs(t *testing.T) {
	a, b, c := tensor.Scalar(1), tensor.Scalar(2), tensor.Scalar(3)

	s, outs, err := tracer.Trace(context.Background(), []any{a, b, c},
		func(ctx context.Context, in []any) (any, error) {
			sum, err := ops.Add(in[0].(*tensor.Tensor), in[1].(*tensor.Tensor))
			if err != nil {
				return nil, err
			}
			return ops.Add(sum, in[2].(*tensor.Tensor))
		}, tracer.WithArgumentNames("a", "b", "c"))
	require.NoError(t, err)

	g := s.Graph()
	require.Len(t, g.Inputs(), 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, g.Inputs()[i].DebugName())
	}
	assert.Equal(t, []ir.Kind{ir.KindAdd, ir.KindAdd}, kinds(g))
	require.Len(t, outs, 1)
	assert.Equal(t, 6.0, outs[0].(*tensor.Tensor).Data()[0])
	assert.False(t, tracer.IsTracing(), "session must be cleared after the trace")
}

func TestTraceKeyedFiltersByArgumentNames(t *testing.T) {
	b, c := tensor.Scalar(2), tensor.Scalar(3)
	inputs := map[string]any{"c": c, "b": b, "extra": 7}

	var received map[string]any
	s, _, err := tracer.TraceKeyed(context.Background(), inputs,
		func(ctx context.Context, in map[string]any) (any, error) {
			received = in
			return ops.Sub(in["b"].(*tensor.Tensor), in["c"].(*tensor.Tensor))
		}, []string{"a", "b", "c"})
	require.NoError(t, err)

	g := s.Graph()
	require.Len(t, g.Inputs(), 2)
	assert.Equal(t, "b", g.Inputs()[0].DebugName())
	assert.Equal(t, "c", g.Inputs()[1].DebugName())
	assert.Equal(t, inputs, received)

	sub := g.Nodes()[0]
	assert.Equal(t, ir.KindSub, sub.Kind())
	assert.Same(t, g.Inputs()[0], sub.Inputs()[0])
	assert.Same(t, g.Inputs()[1], sub.Inputs()[1])
}

func TestTraceGeneralizesOverValues(t *testing.T) {
	first, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(3)}, addOne)
	require.NoError(t, err)
	second, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(5)}, addOne)
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, []ir.Kind{ir.KindConstant, ir.KindAdd}, kinds(first.Graph()))

	add := first.Graph().Nodes()[1]
	assert.Same(t, first.Graph().Inputs()[0], add.Inputs()[0])
	constant, ok := add.Inputs()[1].Node().Attr("value")
	require.True(t, ok)
	assert.Equal(t, 1.0, constant)
}

func TestTraceNilResult(t *testing.T) {
	for name, result := range map[string]any{
		"nil":        nil,
		"nil tensor": (*tensor.Tensor)(nil),
	} {
		t.Run(name, func(t *testing.T) {
			s, outs, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
				func(context.Context, []any) (any, error) { return result, nil })
			assert.ErrorIs(t, err, tracer.ErrNoOutput)
			assert.Nil(t, s)
			assert.Nil(t, outs)
			assert.False(t, tracer.IsTracing())
		})
	}
}

func TestTraceFunctionError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(context.Context, []any) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, tracer.IsTracing())
}

func TestNestedTrace(t *testing.T) {
	var inner error
	_, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(ctx context.Context, in []any) (any, error) {
			_, _, inner = tracer.Trace(ctx, in, addOne)
			return in[0], nil
		})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, tracer.ErrNestedTrace)
	assert.False(t, tracer.IsTracing())
}

func TestUnbalancedScope(t *testing.T) {
	_, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(ctx context.Context, in []any) (any, error) {
			tracer.FromContext(ctx).PushScope("open")
			return ops.Neg(in[0].(*tensor.Tensor))
		})
	assert.ErrorIs(t, err, tracer.ErrUnbalancedScope)
	assert.False(t, tracer.IsTracing())
}

func TestScopeTagging(t *testing.T) {
	s, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(ctx context.Context, in []any) (any, error) {
			st := tracer.FromContext(ctx)
			st.PushScope("A")
			st.PushScope("B")
			x, err := ops.Neg(in[0].(*tensor.Tensor))
			if err != nil {
				return nil, err
			}
			if err := st.PopScope(); err != nil {
				return nil, err
			}
			y, err := ops.Relu(x)
			if err != nil {
				return nil, err
			}
			return y, st.PopScope()
		})
	require.NoError(t, err)

	nodes := s.Graph().Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "A/B", nodes[0].Scope().String())
	assert.Equal(t, "A", nodes[1].Scope().String())
}

func TestInplaceRebindsValue(t *testing.T) {
	warnings := collectWarnings(t)
	x := tensor.MustNew([]float64{1, 2}, 2)
	one := tensor.MustNew([]float64{1, 1}, 2)

	s, outs, err := tracer.Trace(context.Background(), []any{x},
		func(ctx context.Context, in []any) (any, error) {
			xt := in[0].(*tensor.Tensor)
			if _, err := ops.AddInPlace(xt, one); err != nil {
				return nil, err
			}
			v, err := tracer.GetValueTrace(xt)
			if err != nil {
				return nil, err
			}
			last := tracer.FromContext(ctx).Graph().Nodes()
			assert.Same(t, last[len(last)-1].Output(), v)
			return xt, nil
		})
	require.NoError(t, err)

	add := s.Graph().Nodes()[len(s.Graph().Nodes())-1]
	assert.True(t, add.Inplace())
	assert.Equal(t, "aten::add_", add.Name())
	assert.Same(t, add.Output(), s.Graph().Outputs()[0])
	assert.Equal(t, []float64{2, 3}, outs[0].(*tensor.Tensor).Data())
	assert.Len(t, *warnings, 1, "mutating a graph input warns")
}

func TestForceOutplace(t *testing.T) {
	warnings := collectWarnings(t)
	x := tensor.Scalar(2)

	s, _, err := tracer.Trace(context.Background(), []any{x},
		func(ctx context.Context, in []any) (any, error) {
			return ops.MulInPlace(in[0].(*tensor.Tensor), tensor.Scalar(3))
		}, tracer.WithForceOutplace(true))
	require.NoError(t, err)

	mul := s.Graph().Nodes()[len(s.Graph().Nodes())-1]
	assert.False(t, mul.Inplace())
	assert.Equal(t, "aten::mul", mul.Name())
	assert.Empty(t, *warnings)
}

func TestStrictDataDependence(t *testing.T) {
	branch := func(ctx context.Context, in []any) (any, error) {
		x := in[0].(*tensor.Tensor)
		positive, err := ops.Bool(x)
		if err != nil {
			return nil, err
		}
		if positive {
			return ops.Neg(x)
		}
		return ops.Relu(x)
	}

	t.Run("strict", func(t *testing.T) {
		warnings := collectWarnings(t)
		s, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)}, branch)
		require.NoError(t, err)
		require.Len(t, *warnings, 1)
		assert.Contains(t, (*warnings)[0], "bool")
		assert.Equal(t, *warnings, s.Warnings())
		assert.Equal(t, []ir.Kind{ir.KindNeg}, kinds(s.Graph()))
	})

	t.Run("lenient", func(t *testing.T) {
		warnings := collectWarnings(t)
		_, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)}, branch,
			tracer.WithStrict(false))
		require.NoError(t, err)
		assert.Empty(t, *warnings)
	})
}

func TestTupleInputsAndOutputs(t *testing.T) {
	a, b := tensor.Scalar(1), tensor.Scalar(2)

	s, outs, err := tracer.Trace(context.Background(), []any{[]any{a, b}, 4},
		func(ctx context.Context, in []any) (any, error) {
			pair := in[0].([]any)
			sum, err := ops.Add(pair[0].(*tensor.Tensor), pair[1].(*tensor.Tensor))
			if err != nil {
				return nil, err
			}
			return []any{sum, pair[0]}, nil
		})
	require.NoError(t, err)

	g := s.Graph()
	require.Len(t, g.Inputs(), 2)
	assert.Equal(t, "(Tensor(), Tensor())", g.Inputs()[0].Type().String())
	assert.Equal(t, "int", g.Inputs()[1].Type().String())
	assert.Equal(t, []ir.Kind{ir.KindTupleUnpack, ir.KindAdd, ir.KindTupleConstruct}, kinds(g))
	require.Len(t, outs, 2)
	assert.Same(t, a, outs[1])
}

func TestDictOutputWarnsInStrictMode(t *testing.T) {
	warnings := collectWarnings(t)

	s, outs, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(ctx context.Context, in []any) (any, error) {
			x := in[0].(*tensor.Tensor)
			y, err := ops.Neg(x)
			if err != nil {
				return nil, err
			}
			return map[string]any{"y": y, "x": x}, nil
		})
	require.NoError(t, err)

	assert.Len(t, *warnings, 1)
	g := s.Graph()
	last := g.Nodes()[len(g.Nodes())-1]
	assert.Equal(t, ir.KindDictConstruct, last.Kind())
	assert.Len(t, last.Inputs(), 4)
	assert.Len(t, outs, 2)
}

func TestDictInputRejectedPositionally(t *testing.T) {
	_, _, err := tracer.Trace(context.Background(), []any{map[string]any{"a": 1}}, addOne)
	assert.ErrorIs(t, err, tracer.ErrUnsupportedInput)
	assert.False(t, tracer.IsTracing())
}

type linear struct {
	weight *tensor.Tensor
}

func (l *linear) ModuleName() string { return "Linear" }

func (l *linear) NamedParameters() []tracer.NamedTensor {
	return []tracer.NamedTensor{{Name: "weight", Tensor: l.weight}}
}

func TestSelfModule(t *testing.T) {
	m := &linear{weight: tensor.MustNew([]float64{1, 0, 0, 1}, 2, 2)}
	x := tensor.MustNew([]float64{3, 4}, 1, 2)

	s, _, err := tracer.Trace(context.Background(), []any{x},
		func(ctx context.Context, in []any) (any, error) {
			return ops.MatMul(in[0].(*tensor.Tensor), m.weight)
		}, tracer.WithSelf(m))
	require.NoError(t, err)

	g := s.Graph()
	require.Len(t, g.Inputs(), 2)
	assert.Equal(t, "self", g.Inputs()[0].DebugName())
	assert.Equal(t, "__module__.Linear", g.Inputs()[0].Type().String())

	getattr := g.Nodes()[0]
	assert.Equal(t, ir.KindGetAttr, getattr.Kind())
	name, _ := getattr.Attr("name")
	assert.Equal(t, "weight", name)

	matmul := g.Nodes()[1]
	assert.Same(t, getattr.Output(), matmul.Inputs()[1])
}

func TestUntracedOperandsBecomeConstants(t *testing.T) {
	bias := tensor.Scalar(10)
	s, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(ctx context.Context, in []any) (any, error) {
			return ops.Add(in[0].(*tensor.Tensor), bias)
		})
	require.NoError(t, err)

	assert.Equal(t, []ir.Kind{ir.KindConstant, ir.KindAdd}, kinds(s.Graph()))
	assert.False(t, s.HasValue(bias))
}

func TestUntracedOpsAreNotRecorded(t *testing.T) {
	y, err := ops.AddScalar(tensor.Scalar(1), 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, y.Data()[0])
	assert.False(t, tracer.IsTracing())
}

func TestValueTraceWithoutSession(t *testing.T) {
	_, err := tracer.GetValueTrace(tensor.Scalar(1))
	assert.ErrorIs(t, err, tracer.ErrNoActiveTrace)
	assert.ErrorIs(t, tracer.SetValueTrace(tensor.Scalar(1), nil), tracer.ErrNoActiveTrace)
}

func TestMetricsObserveTrace(t *testing.T) {
	m := monitoring.NewMetrics("tracer_test")

	_, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)}, addOne,
		tracer.WithMetrics(m))
	require.NoError(t, err)
	_, _, err = tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(context.Context, []any) (any, error) { return nil, nil }, tracer.WithMetrics(m))
	require.Error(t, err)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.Traces)
	assert.Equal(t, int64(1), snap.FailedTraces)
	assert.Equal(t, int64(2), snap.Nodes)
}

func TestProvenanceFromGoCallstack(t *testing.T) {
	prev := tracer.SetCallstack(tracer.GoCallstack(16))
	defer tracer.SetCallstack(prev)

	s, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)},
		func(ctx context.Context, in []any) (any, error) {
			return ops.Neg(in[0].(*tensor.Tensor))
		})
	require.NoError(t, err)

	neg := s.Graph().Nodes()[0]
	file, _, ok := neg.SourceRange().Location()
	require.True(t, ok)
	assert.Contains(t, file, "trace_test.go")
}

func TestProvenanceDisabled(t *testing.T) {
	prev := tracer.SetCallstack(tracer.GoCallstack(16))
	defer tracer.SetCallstack(prev)

	s, _, err := tracer.Trace(context.Background(), []any{tensor.Scalar(1)}, addOne,
		tracer.WithProvenance(false))
	require.NoError(t, err)
	for _, n := range s.Graph().Nodes() {
		assert.False(t, n.SourceRange().Known())
	}
}
