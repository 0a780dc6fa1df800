// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Library code (the tracer core, the JS host) never builds its own logger:
// it receives one through options and falls back to Nop(), so embedding the
// tracer stays silent unless the host opts in.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	traceLog := logger.Named("tracer").With(logging.TraceID(state.ID()))
//	traceLog.Debug("node recorded", zap.String("kind", "aten::add"))
package logging
