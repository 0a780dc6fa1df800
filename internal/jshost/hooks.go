package jshost

import (
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/logging"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/provenance"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

var installOnce sync.Once

// active maps goroutines to the runtime currently executing on them.
var active = struct {
	sync.RWMutex
	runtimes map[int64]*Runtime
}{runtimes: make(map[int64]*Runtime)}

func activate(r *Runtime) func() {
	gid := id.Goroutine()

	active.Lock()
	prev := active.runtimes[gid]
	active.runtimes[gid] = r
	active.Unlock()

	return func() {
		active.Lock()
		defer active.Unlock()
		if prev != nil {
			active.runtimes[gid] = prev
			return
		}
		delete(active.runtimes, gid)
	}
}

func activeRuntime() *Runtime {
	gid := id.Goroutine()
	active.RLock()
	defer active.RUnlock()
	return active.runtimes[gid]
}

// Install registers the JS call-stack provider and warning sink with the
// tracer. Only the first call has an effect; call it at startup. Goroutines
// not running a script keep using the hooks registered before Install.
func Install(logger *logging.Logger) {
	installOnce.Do(func() {
		if logger == nil {
			logger = logging.Nop()
		}
		log := logger.Named("jshost")

		var prevStack tracer.CallstackFunc
		prevStack = tracer.SetCallstack(func() provenance.Stack {
			if r := activeRuntime(); r != nil {
				return r.callstack()
			}
			if prevStack != nil {
				return prevStack()
			}
			return nil
		})

		var prevWarn tracer.WarnFunc
		prevWarn = tracer.SetWarn(func(reason string) {
			if r := activeRuntime(); r != nil {
				r.warn(reason)
				return
			}
			if prevWarn != nil {
				prevWarn(reason)
				return
			}
			log.Warn("tracer warning", zap.String("reason", reason))
		})
	})
}

// callstack captures the script stack without resolving positions.
func (r *Runtime) callstack() provenance.Stack {
	defer r.lock.acquire()()
	if r.vm == nil {
		return nil
	}
	return jsStack(r.vm.CaptureCallStack(r.config.StackDepth, nil))
}

// warn records a TracerWarning and forwards it to console.warn.
func (r *Runtime) warn(reason string) {
	defer r.lock.acquire()()

	r.consoleMu.Lock()
	r.diagnostics = append(r.diagnostics, Diagnostic{Category: CategoryTracerWarning, Message: reason})
	r.consoleMu.Unlock()

	if r.vm == nil {
		return
	}
	console, ok := r.vm.Get("console").(*goja.Object)
	if !ok {
		return
	}
	fn, ok := goja.AssertFunction(console.Get("warn"))
	if !ok {
		return
	}
	if _, err := fn(console, r.vm.ToValue(CategoryTracerWarning+": "+reason)); err != nil {
		r.log.Warn("console.warn failed", zap.Error(err))
	}
}

// jsStack resolves script positions when a provenance record is first read.
type jsStack []goja.StackFrame

func (s jsStack) Entries() []provenance.StackEntry {
	out := make([]provenance.StackEntry, 0, len(s))
	for _, f := range s {
		pos := f.Position()
		out = append(out, provenance.StackEntry{
			Function: f.FuncName(),
			File:     pos.Filename,
			Line:     pos.Line,
		})
	}
	return out
}
