package jshost

import (
	"errors"
	"time"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

var (
	ErrEntryNotFound = errors.New("entry function not found")
	ErrClosed        = errors.New("runtime is closed")
	ErrPoolClosed    = errors.New("runtime pool is closed")
	ErrTimeout       = errors.New("runtime acquisition timeout")
	ErrHostPanic     = errors.New("host function panicked")
)

// CategoryTracerWarning tags diagnostics reported by the tracer.
const CategoryTracerWarning = "TracerWarning"

// Config defines runtime configuration
type Config struct {
	MaxCallStack int           // Maximum JS call stack depth
	Timeout      time.Duration // Execution timeout, 0 for none
	StackDepth   int           // Frames captured per recorded node

	// The pool stops accepting work for BreakerCooldown after
	// BreakerTrips consecutive timeouts.
	BreakerTrips    int
	BreakerCooldown time.Duration
}

// DefaultConfig returns the default runtime configuration
func DefaultConfig() Config {
	return Config{
		MaxCallStack: 1024,
		Timeout:      10 * time.Second,
		StackDepth:   32,

		BreakerTrips:    3,
		BreakerCooldown: 30 * time.Second,
	}
}

// ConfigFrom derives a runtime configuration from application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MaxCallStack: cfg.Host.MaxCallStack,
		Timeout:      cfg.Host.Timeout,
		StackDepth:   cfg.Tracer.StackDepth,

		BreakerTrips:    cfg.Host.BreakerTrips,
		BreakerCooldown: cfg.Host.BreakerCooldown,
	}
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, warn, error, info
	Message string    // Log message
	Time    time.Time // Timestamp
}

// Diagnostic is a categorized warning raised while a script ran.
type Diagnostic struct {
	Category string
	Message  string
}

// Request describes one traced call of a script's entry function.
type Request struct {
	Name   string // Script file name, used in provenance
	Script string
	Entry  string // Global function to trace

	// Inputs are passed positionally. When Keyed is set the entry receives
	// a single object instead and ArgumentNames selects the graph inputs.
	Inputs        []any
	Keyed         map[string]any
	ArgumentNames []string

	// Module, when set, is visible to the script as the global "self" and
	// its parameters are traced as attributes of a module input.
	Module *Module
}

// Result holds the outcome of an execution or a traced call
type Result struct {
	Value       any // Completion value of Execute
	State       *tracer.State
	Outputs     []any
	Diagnostics []Diagnostic
	Console     []LogEntry
	Duration    time.Duration
}

// Module is a named set of parameters traced through the "self" input.
type Module struct {
	Name       string
	Parameters []tracer.NamedTensor
}

// ModuleName implements tracer.Module.
func (m *Module) ModuleName() string { return m.Name }

// NamedParameters implements tracer.Module.
func (m *Module) NamedParameters() []tracer.NamedTensor { return m.Parameters }
