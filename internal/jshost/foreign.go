package jshost

import (
	"context"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

// jsTarget adapts a script value to a foreign call target.
type jsTarget struct {
	r   *Runtime
	obj *goja.Object
}

// Name implements the display name of the recorded node.
func (t jsTarget) Name() string {
	if name := t.obj.Get("name"); name != nil && !goja.IsUndefined(name) && name.String() != "" {
		return name.String()
	}
	return t.obj.ClassName()
}

// ApplyTarget resolves the apply routine: an own "apply" method when the
// object has one, otherwise the object itself when it is callable.
func (t jsTarget) ApplyTarget() (tracer.Applier, bool) {
	this := goja.Value(t.obj)
	fn, ok := t.applyMethod()
	if !ok {
		if fn, ok = goja.AssertFunction(t.obj); !ok {
			return nil, false
		}
		this = goja.Undefined()
	}

	return tracer.ApplyFunc(func(ctx context.Context, args []any) (any, error) {
		vals := make([]goja.Value, len(args))
		for i, a := range args {
			vals[i] = t.r.vm.ToValue(a)
		}
		res, err := fn(this, vals...)
		if err != nil {
			return nil, err
		}
		return exportValue(res), nil
	}), true
}

func (t jsTarget) applyMethod() (goja.Callable, bool) {
	apply := t.obj.Get("apply")
	if apply == nil || apply.SameAs(t.r.protoApply) {
		return nil, false
	}
	return goja.AssertFunction(apply)
}

// foreign implements tracer.foreign(target, ...args).
func (r *Runtime) foreign(call goja.FunctionCall) goja.Value {
	obj, ok := call.Argument(0).(*goja.Object)
	if !ok {
		panic(r.vm.NewTypeError("foreign: target must be an object or a function"))
	}

	args := make([]any, 0, len(call.Arguments))
	for _, a := range call.Arguments[min(1, len(call.Arguments)):] {
		args = append(args, exportValue(a))
	}

	res, err := tracer.CallForeign(r.ctx, jsTarget{r: r, obj: obj}, args...)
	if err != nil {
		r.throw(err)
	}
	return r.vm.ToValue(res)
}
