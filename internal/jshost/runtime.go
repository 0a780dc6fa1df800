package jshost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/logging"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

// Runtime wraps a goja VM exposing the tensor API
type Runtime struct {
	vm     *goja.Runtime
	config Config
	lock   hostLock

	logger *logging.Logger // passed on to tracing sessions
	log    *logging.Logger

	// Console output and diagnostics of the current execution
	console     []LogEntry
	diagnostics []Diagnostic
	consoleMu   sync.Mutex

	// Context of the current execution, handed to foreign calls
	ctx context.Context

	// Function.prototype.apply, which must not be mistaken for a foreign
	// call's apply routine
	protoApply goja.Value
}

// New creates a new runtime
func New(config Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	r := &Runtime{
		config: config,
		logger: logger,
		log:    logger.Named("jshost"),
		ctx:    context.Background(),
	}
	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	return r, nil
}

// Execute runs a script untraced and returns its completion value
func (r *Runtime) Execute(ctx context.Context, name, script string) (*Result, error) {
	defer r.lock.acquire()()

	start := time.Now()
	result := &Result{}
	err := r.run(ctx, func() error {
		val, err := r.vm.RunScript(name, script)
		if err != nil {
			return err
		}
		result.Value = exportValue(val)
		return nil
	})
	r.collect(result, start)
	if err != nil {
		return result, err
	}
	return result, nil
}

// Trace loads req.Script and traces one call of its entry function.
// Options are applied after the runtime's own (name lookup, logger).
func (r *Runtime) Trace(ctx context.Context, req Request, opts ...tracer.Option) (*Result, error) {
	defer r.lock.acquire()()

	start := time.Now()
	result := &Result{}
	err := r.run(ctx, func() error {
		if _, err := r.vm.RunScript(req.Name, req.Script); err != nil {
			return fmt.Errorf("load %s: %w", req.Name, err)
		}
		entry, ok := goja.AssertFunction(r.vm.Get(req.Entry))
		if !ok {
			return fmt.Errorf("%w: %q", ErrEntryNotFound, req.Entry)
		}

		base := []tracer.Option{
			tracer.WithNameLookup(r.lookupName),
			tracer.WithLogger(r.logger),
		}
		if req.Module != nil {
			if err := r.vm.Set("self", moduleObject(req.Module)); err != nil {
				return err
			}
			base = append(base, tracer.WithSelf(req.Module))
		}
		opts = append(base, opts...)

		call := func(ctx context.Context, args ...goja.Value) (any, error) {
			prev := r.ctx
			r.ctx = ctx
			defer func() { r.ctx = prev }()

			v, err := entry(goja.Undefined(), args...)
			if err != nil {
				return nil, err
			}
			return exportValue(v), nil
		}

		var err error
		if req.Keyed != nil {
			names := req.ArgumentNames
			if len(names) == 0 {
				names = sortedNames(req.Keyed)
			}
			result.State, result.Outputs, err = tracer.TraceKeyed(ctx, req.Keyed,
				func(ctx context.Context, in map[string]any) (any, error) {
					return call(ctx, r.vm.ToValue(in))
				}, names, opts...)
			return err
		}

		if len(req.ArgumentNames) > 0 {
			opts = append(opts, tracer.WithArgumentNames(req.ArgumentNames...))
		}
		result.State, result.Outputs, err = tracer.Trace(ctx, req.Inputs,
			func(ctx context.Context, in []any) (any, error) {
				args := make([]goja.Value, len(in))
				for i, v := range in {
					args[i] = r.vm.ToValue(v)
				}
				return call(ctx, args...)
			}, opts...)
		return err
	})
	r.collect(result, start)
	if err != nil {
		r.log.Debug("trace failed", zap.String("script", req.Name), zap.Error(err))
		return result, err
	}
	return result, nil
}

const timeoutReason = "execution timeout exceeded"

// TimedOut reports whether err is a script interrupted by the execution
// timeout. Context cancellation does not count.
func TimedOut(err error) bool {
	var interrupted *goja.InterruptedError
	return errors.As(err, &interrupted) && interrupted.Value() == timeoutReason
}

// run executes fn with the runtime published for the calling goroutine
// and the execution timeout armed. A Go panic escaping a host function is
// returned as ErrHostPanic and the VM is rebuilt. Callers hold the lock.
func (r *Runtime) run(ctx context.Context, fn func() error) (err error) {
	if r.vm == nil {
		return ErrClosed
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		err = fmt.Errorf("%w: %v", ErrHostPanic, p)
		r.log.Error("host function panicked", zap.Any("panic", p))
		if resetErr := r.setupGlobals(); resetErr != nil {
			r.vm = nil
			err = errors.Join(err, resetErr)
		}
	}()

	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.diagnostics = nil
	r.consoleMu.Unlock()

	var timeout <-chan time.Time
	if r.config.Timeout > 0 {
		timer := time.NewTimer(r.config.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	// Setup interrupt handler
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-timeout:
			r.vm.Interrupt(timeoutReason)
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
		r.vm.ClearInterrupt()
	}()

	deactivate := activate(r)
	defer deactivate()

	prev := r.ctx
	r.ctx = ctx
	defer func() { r.ctx = prev }()

	return fn()
}

func (r *Runtime) collect(result *Result, start time.Time) {
	result.Duration = time.Since(start)

	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	result.Console = append([]LogEntry{}, r.console...)
	result.Diagnostics = append([]Diagnostic(nil), r.diagnostics...)
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() error {
	vm := goja.New()
	vm.SetFieldNameMapper(apiFieldMapper{})
	if r.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}
	r.vm = vm

	// Remove dangerous globals
	vm.Set("require", goja.Undefined())
	vm.Set("process", goja.Undefined())
	vm.Set("module", goja.Undefined())
	vm.Set("exports", goja.Undefined())

	console := vm.NewObject()
	console.Set("log", r.makeConsoleFunc("log"))
	console.Set("warn", r.makeConsoleFunc("warn"))
	console.Set("error", r.makeConsoleFunc("error"))
	console.Set("info", r.makeConsoleFunc("info"))
	vm.Set("console", console)

	// Setup timers (no-op)
	vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	proto, ok := vm.Get("Function").(*goja.Object)
	if !ok {
		return errors.New("runtime has no Function constructor")
	}
	r.protoApply = proto.Get("prototype").ToObject(vm).Get("apply")

	return r.setupTensorAPI()
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// lookupName names a tensor after the global variable holding it. Only the
// goroutine running a script on this runtime may look names up; the tracer
// calls it from inside that script. Globals that do not wrap a tensor are
// skipped without exporting them.
func (r *Runtime) lookupName(t *tensor.Tensor) string {
	if !r.lock.heldByCaller() || r.vm == nil {
		return ""
	}

	global := r.vm.GlobalObject()
	for _, key := range global.Keys() {
		v := global.Get(key)
		if v == nil || v.ExportType() != tensorPtrType {
			continue
		}
		if held, _ := v.Export().(*tensor.Tensor); held == t {
			return key
		}
	}
	return ""
}

// throw raises err as a JS exception. Exceptions thrown by script code are
// re-raised unchanged.
func (r *Runtime) throw(err error) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		panic(ex)
	}
	panic(r.vm.NewGoError(err))
}

// exportValue converts goja value to Go value
func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

func moduleObject(m *Module) map[string]any {
	obj := make(map[string]any, len(m.Parameters))
	for _, p := range m.Parameters {
		obj[p.Name] = p.Tensor
	}
	return obj
}

// Reset clears the runtime state
func (r *Runtime) Reset() error {
	defer r.lock.acquire()()

	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.diagnostics = nil
	r.consoleMu.Unlock()
	return r.setupGlobals()
}

// Close releases resources
func (r *Runtime) Close() error {
	defer r.lock.acquire()()

	r.vm = nil
	r.console = nil
	r.diagnostics = nil
	return nil
}
