package tracer

import (
	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/logging"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tensor"
)

// NameLookup returns a display name for a runtime tensor, "" for none.
type NameLookup func(t *tensor.Tensor) string

// Option configures a tracing session.
type Option func(*options)

type options struct {
	nameLookup    NameLookup
	strict        bool
	forceOutplace bool
	provenance    bool
	self          Module
	argumentNames []string
	logger        *logging.Logger
	metrics       *monitoring.Metrics
}

func defaultOptions() *options {
	return &options{
		strict:     true,
		provenance: true,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	return o
}

// WithNameLookup sets the callback naming values bound in the value table.
func WithNameLookup(fn NameLookup) Option {
	return func(o *options) { o.nameLookup = fn }
}

// WithStrict toggles strict mode (default on): data-dependent conversions of
// traced tensors are reported as warnings.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithForceOutplace toggles recording in-place ops as out-of-place ones.
func WithForceOutplace(force bool) Option {
	return func(o *options) { o.forceOutplace = force }
}

// WithProvenance toggles source-location capture for recorded nodes.
func WithProvenance(enabled bool) Option {
	return func(o *options) { o.provenance = enabled }
}

// WithSelf traces m's parameters as attributes of a leading module input.
func WithSelf(m Module) Option {
	return func(o *options) { o.self = m }
}

// WithArgumentNames names positional graph inputs in order.
func WithArgumentNames(names ...string) Option {
	return func(o *options) { o.argumentNames = append([]string(nil), names...) }
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithConfig applies the session defaults from configuration.
func WithConfig(cfg config.TracerConfig) Option {
	return func(o *options) {
		o.strict = cfg.Strict
		o.forceOutplace = cfg.ForceOutplace
		o.provenance = cfg.Provenance
	}
}
