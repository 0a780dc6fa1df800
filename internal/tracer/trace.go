package tracer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
)

// Call conventions, used as the metrics label.
const (
	ConventionPositional = "positional"
	ConventionKeyed      = "keyed"
)

// Func is a traced computation taking positional inputs.
type Func func(ctx context.Context, inputs []any) (any, error)

// KeyedFunc is a traced computation taking named inputs.
type KeyedFunc func(ctx context.Context, inputs map[string]any) (any, error)

// Trace runs fn once with inputs under interception and returns the finished
// session together with the flat list of output leaves.
//
// Every element of inputs becomes one graph input, in order: tensors are
// bound in the value table, tuples ([]any) are unpacked and their tensors
// bound, Go scalars become typed inputs. fn receives a copy of inputs and a
// context carrying the session.
func Trace(ctx context.Context, inputs []any, fn Func, opts ...Option) (*State, []any, error) {
	o := buildOptions(opts)
	return run(ctx, ConventionPositional, inputs, o.argumentNames, o, func(ctx context.Context) (any, error) {
		return fn(ctx, append([]any(nil), inputs...))
	})
}

// TraceKeyed runs fn once with named inputs. Only the names listed in
// argumentNames that are present in inputs become graph inputs, in
// argumentNames order; fn receives the original map unchanged, so defaults
// and untraced arguments pass straight through.
func TraceKeyed(ctx context.Context, inputs map[string]any, fn KeyedFunc, argumentNames []string, opts ...Option) (*State, []any, error) {
	o := buildOptions(opts)

	var (
		names   []string
		compact []any
	)
	for _, name := range argumentNames {
		if v, ok := inputs[name]; ok {
			names = append(names, name)
			compact = append(compact, v)
		}
	}

	return run(ctx, ConventionKeyed, compact, names, o, func(ctx context.Context) (any, error) {
		return fn(ctx, inputs)
	})
}

func run(ctx context.Context, convention string, inputs []any, names []string, o *options,
	call func(ctx context.Context) (any, error)) (state *State, outputs []any, err error) {
	start := time.Now()
	s := newState(o)

	uninstall, err := sessions.install(s)
	if err != nil {
		return nil, nil, err
	}
	if s.metrics != nil {
		s.metrics.TraceStarted()
	}
	defer func() {
		uninstall()
		if s.metrics != nil {
			s.metrics.TraceFinished(convention, time.Since(start), err)
		}
		if err != nil {
			s.logger.Debug("trace aborted", zap.String("convention", convention), zap.Error(err))
			state, outputs = nil, nil
			return
		}
		s.logger.Debug("trace finished",
			zap.String("convention", convention),
			zap.Int("nodes", len(s.graph.Nodes())),
			zap.Int("warnings", len(s.warnings)),
			zap.Duration("duration", time.Since(start)))
	}()

	if o.self != nil {
		if err := s.bindModule(o.self); err != nil {
			return nil, nil, err
		}
	}
	for i, in := range inputs {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if err := s.addInput(name, in); err != nil {
			return nil, nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	out, err := call(WithState(ctx, s))
	if err != nil {
		return nil, nil, err
	}
	if isNothing(out) {
		return nil, nil, ErrNoOutput
	}
	if depth := s.graph.ScopeDepth(); depth != 0 {
		return nil, nil, fmt.Errorf("%w: %d scope(s) still open (current %q)", ErrUnbalancedScope, depth, s.CurrentScope())
	}

	value, flat, err := s.output(out)
	if err != nil {
		return nil, nil, err
	}
	s.graph.RegisterOutput(value)

	if err := s.graph.Lint(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDanglingValue, err)
	}
	return s, flat, nil
}

func isNothing(v any) bool {
	if v == nil {
		return true
	}
	t, ok := v.(*tensor.Tensor)
	return ok && t == nil
}

// addInput declares one graph input for a runtime value.
func (s *State) addInput(name string, in any) error {
	typ, err := InferType(in)
	if err != nil {
		return fmt.Errorf("%w: %T", ErrUnsupportedInput, in)
	}
	if _, ok := in.(map[string]any); ok {
		return fmt.Errorf("%w: dictionaries are only accepted through TraceKeyed", ErrUnsupportedInput)
	}
	v := s.graph.AddInput(name, typ)
	return s.bindInput(v, in)
}

func (s *State) bindInput(v *ir.Value, in any) error {
	switch x := in.(type) {
	case *tensor.Tensor:
		s.SetValue(x, v)
	case []any:
		tuple := v.Type().(ir.TupleType)
		n := s.graph.Create(ir.KindTupleUnpack, []*ir.Value{v}, tuple.Elems...)
		if _, err := s.insert(n); err != nil {
			return err
		}
		for i, e := range x {
			if err := s.bindInput(n.Outputs()[i], e); err != nil {
				return err
			}
		}
	}
	return nil
}

// output converts the traced function's result into one IR value and the
// flat list of runtime leaves.
func (s *State) output(out any) (*ir.Value, []any, error) {
	switch x := out.(type) {
	case *tensor.Tensor:
		v, err := s.value(x)
		return v, []any{x}, err
	case []any:
		inputs := make([]*ir.Value, len(x))
		types := make([]ir.Type, len(x))
		var flat []any
		for i, e := range x {
			v, leaves, err := s.output(e)
			if err != nil {
				return nil, nil, fmt.Errorf("output %d: %w", i, err)
			}
			inputs[i], types[i] = v, v.Type()
			flat = append(flat, leaves...)
		}
		n := s.graph.Create(ir.KindTupleConstruct, inputs, ir.TupleType{Elems: types})
		if _, err := s.insert(n); err != nil {
			return nil, nil, err
		}
		return n.Output(), flat, nil
	case map[string]any:
		if s.strict {
			s.Warn("the traced function returns a dictionary; its keys are fixed by this trace " +
				"and mutations of it are not captured")
		}
		typ, err := InferType(x)
		if err != nil {
			return nil, nil, err
		}
		var (
			inputs []*ir.Value
			flat   []any
		)
		for _, k := range sortedKeys(x) {
			key, err := s.Constant(k)
			if err != nil {
				return nil, nil, err
			}
			v, leaves, err := s.output(x[k])
			if err != nil {
				return nil, nil, fmt.Errorf("output %q: %w", k, err)
			}
			inputs = append(inputs, key, v)
			flat = append(flat, leaves...)
		}
		n := s.graph.Create(ir.KindDictConstruct, inputs, typ)
		if _, err := s.insert(n); err != nil {
			return nil, nil, err
		}
		return n.Output(), flat, nil
	}

	v, err := s.Constant(out)
	if err != nil {
		return nil, nil, err
	}
	return v, []any{out}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetValueTrace returns the IR value of t in the calling goroutine's
// session.
func GetValueTrace(t *tensor.Tensor) (*ir.Value, error) {
	s := Current()
	if s == nil {
		return nil, ErrNoActiveTrace
	}
	return s.GetValue(t)
}

// SetValueTrace binds t to v in the calling goroutine's session.
func SetValueTrace(t *tensor.Tensor, v *ir.Value) error {
	s := Current()
	if s == nil {
		return ErrNoActiveTrace
	}
	s.SetValue(t, v)
	return nil
}
