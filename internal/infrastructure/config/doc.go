// Package config provides 12-factor configuration for the tracer.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags override environment variables.
//
// Configuration Sections:
//   - Tracer: default trace modes (strict, force-outplace) and provenance
//   - Host: JavaScript host limits (call stack depth, pool size, timeout)
//     and the pool's timeout breaker
//   - Logging: Log level and output format
//   - Metrics: Prometheus namespace
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	state, outs, err := tracer.Trace(ctx, inputs, fn, tracer.WithConfig(cfg.Tracer))
//
// Environment Variables:
//   - TRACER_STRICT, TRACER_FORCE_OUTPLACE, TRACER_PROVENANCE, TRACER_STACK_DEPTH
//   - HOST_MAX_CALL_STACK, HOST_POOL_SIZE, HOST_TIMEOUT
//   - HOST_BREAKER_TRIPS, HOST_BREAKER_COOLDOWN
//   - LOG_LEVEL, LOG_DEV
//   - METRICS_NAMESPACE
package config
