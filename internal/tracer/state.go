package tracer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/logging"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
)

// State is one tracing session. It is owned by a single goroutine and is not
// safe for concurrent use.
type State struct {
	id     id.TraceID
	graph  *ir.Graph
	values map[*tensor.Tensor]*ir.Value

	strict        bool
	forceOutplace bool
	provenance    bool
	nameLookup    NameLookup

	logger   *logging.Logger
	metrics  *monitoring.Metrics
	warnings []string
}

// NewState creates a session with an empty graph. Sessions built this way
// are not published; install one with SetCurrent to extend a trace by hand.
func NewState(opts ...Option) *State {
	return newState(buildOptions(opts))
}

func newState(o *options) *State {
	traceID := id.NewTraceID()
	return &State{
		id:            traceID,
		graph:         ir.New(),
		values:        make(map[*tensor.Tensor]*ir.Value),
		strict:        o.strict,
		forceOutplace: o.forceOutplace,
		provenance:    o.provenance,
		nameLookup:    o.nameLookup,
		logger:        o.logger.Named("tracer").With(logging.TraceID(traceID.String())),
		metrics:       o.metrics,
	}
}

// ID returns the session identifier.
func (s *State) ID() id.TraceID { return s.id }

// Graph returns the graph being built.
func (s *State) Graph() *ir.Graph { return s.graph }

// SetGraph replaces the graph. Values bound to the old graph stay in the
// table until rebound.
func (s *State) SetGraph(g *ir.Graph) { s.graph = g }

// Strict reports whether strict mode is on.
func (s *State) Strict() bool { return s.strict }

// SetStrict toggles strict mode.
func (s *State) SetStrict(strict bool) { s.strict = strict }

// ForceOutplace reports whether in-place ops are recorded out of place.
func (s *State) ForceOutplace() bool { return s.forceOutplace }

// SetForceOutplace toggles out-of-place recording of in-place ops.
func (s *State) SetForceOutplace(force bool) { s.forceOutplace = force }

// SetNameLookup replaces the value naming callback.
func (s *State) SetNameLookup(fn NameLookup) { s.nameLookup = fn }

// GetValue returns the IR value currently representing t.
func (s *State) GetValue(t *tensor.Tensor) (*ir.Value, error) {
	if v, ok := s.values[t]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: tensor of shape %v", ErrUntracedValue, shapeOf(t))
}

// HasValue reports whether t is bound in the value table.
func (s *State) HasValue(t *tensor.Tensor) bool {
	_, ok := s.values[t]
	return ok
}

// SetValue binds t to v, replacing any previous binding. Unnamed values get
// a debug name from the name lookup callback.
func (s *State) SetValue(t *tensor.Tensor, v *ir.Value) {
	s.values[t] = v
	if v.HasDebugName() || s.nameLookup == nil {
		return
	}
	if name := s.nameLookup(t); name != "" {
		v.SetDebugName(name)
	}
}

// PushScope enters a named scope for subsequently recorded nodes.
func (s *State) PushScope(name string) {
	s.graph.PushScope(name)
}

// PopScope leaves the innermost scope.
func (s *State) PopScope() error {
	return s.graph.PopScope()
}

// CurrentScope returns the qualified name of the innermost scope ("" at the
// root).
func (s *State) CurrentScope() string {
	return s.graph.CurrentScope().String()
}

// Warn reports a non-fatal diagnostic through the warning sink.
func (s *State) Warn(reason string) {
	s.warnings = append(s.warnings, reason)
	if s.metrics != nil {
		s.metrics.WarningEmitted()
	}
	if !Warn(reason) {
		s.logger.Debug("tracer warning dropped, no sink registered", zap.String("reason", reason))
	}
}

// Warnings returns the diagnostics reported during this session.
func (s *State) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// String prints the session's graph.
func (s *State) String() string {
	return s.graph.String()
}

func shapeOf(t *tensor.Tensor) []int {
	if t == nil {
		return nil
	}
	return t.Shape()
}
