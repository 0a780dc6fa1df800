package jshost

import (
	"reflect"
	"sort"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/ops"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

// opTable lists the primitive ops visible to scripts as ops.<name>.
var opTable = map[string]any{
	"add":         ops.Add,
	"sub":         ops.Sub,
	"mul":         ops.Mul,
	"div":         ops.Div,
	"addScalar":   ops.AddScalar,
	"mulScalar":   ops.MulScalar,
	"neg":         ops.Neg,
	"relu":        ops.Relu,
	"matMul":      ops.MatMul,
	"sum":         ops.Sum,
	"transpose":   ops.Transpose,
	"addInPlace":  ops.AddInPlace,
	"subInPlace":  ops.SubInPlace,
	"mulInPlace":  ops.MulInPlace,
	"divInPlace":  ops.DivInPlace,
	"negInPlace":  ops.NegInPlace,
	"reluInPlace": ops.ReluInPlace,
	"item":        ops.Item,
	"bool":        ops.Bool,
	"data":        ops.Data,
}

func (r *Runtime) setupTensorAPI() error {
	vm := r.vm

	if err := vm.Set("tensor", r.newTensor); err != nil {
		return err
	}
	if err := vm.Set("zeros", tensor.Zeros); err != nil {
		return err
	}

	opsObj := vm.NewObject()
	for name, fn := range opTable {
		if err := opsObj.Set(name, fn); err != nil {
			return err
		}
	}
	if err := vm.Set("ops", opsObj); err != nil {
		return err
	}

	tr := vm.NewObject()
	tr.Set("scope", r.scope)
	tr.Set("foreign", r.foreign)
	tr.Set("isTracing", tracer.IsTracing)
	tr.Set("setStrict", func(strict bool) {
		if s := tracer.Current(); s != nil {
			s.SetStrict(strict)
		}
	})
	tr.Set("setForceOutplace", func(force bool) {
		if s := tracer.Current(); s != nil {
			s.SetForceOutplace(force)
		}
	})
	tr.Set("graph", func() string {
		if s := tracer.Current(); s != nil {
			return s.String()
		}
		return ""
	})
	return vm.Set("tracer", tr)
}

// newTensor implements tensor(data, shape). A bare number makes a
// zero-dimensional tensor; a missing shape makes a vector.
func (r *Runtime) newTensor(call goja.FunctionCall) goja.Value {
	switch x := exportValue(call.Argument(0)).(type) {
	case int64:
		return r.vm.ToValue(tensor.Scalar(float64(x)))
	case float64:
		return r.vm.ToValue(tensor.Scalar(x))
	}

	var data []float64
	if err := r.vm.ExportTo(call.Argument(0), &data); err != nil {
		panic(r.vm.NewTypeError("tensor: data must be a number or an array of numbers"))
	}
	dims := []int{len(data)}
	if shape := call.Argument(1); !goja.IsUndefined(shape) {
		if err := r.vm.ExportTo(shape, &dims); err != nil {
			panic(r.vm.NewTypeError("tensor: shape must be an array of integers"))
		}
	}

	if len(dims) == 0 && len(data) == 1 {
		return r.vm.ToValue(tensor.Scalar(data[0]))
	}
	t, err := tensor.New(data, dims...)
	if err != nil {
		r.throw(err)
	}
	return r.vm.ToValue(t)
}

// scope implements tracer.scope(name, fn).
func (r *Runtime) scope(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(r.vm.NewTypeError("scope: second argument must be a function"))
	}

	if s := tracer.Current(); s != nil {
		s.PushScope(name)
		defer func() {
			if err := s.PopScope(); err != nil {
				r.log.Warn("scope pop failed", zap.String("scope", name), zap.Error(err))
			}
		}()
	}

	res, err := fn(goja.Undefined())
	if err != nil {
		r.throw(err)
	}
	return res
}

// apiFieldMapper exposes Go values with lower-camel names. Tensor methods
// that read data or copy bypass interception and stay hidden, so scripts go
// through ops.item/ops.bool/ops.data instead. Only shape metadata remains.
type apiFieldMapper struct{}

var (
	tensorPtrType = reflect.TypeOf((*tensor.Tensor)(nil))

	tensorMethods = map[string]bool{
		"Shape": true,
		"Dims":  true,
		"Len":   true,
	}
)

func (apiFieldMapper) FieldName(_ reflect.Type, f reflect.StructField) string {
	return uncap(f.Name)
}

func (apiFieldMapper) MethodName(t reflect.Type, m reflect.Method) string {
	if t == tensorPtrType && !tensorMethods[m.Name] {
		return ""
	}
	return uncap(m.Name)
}

func uncap(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
