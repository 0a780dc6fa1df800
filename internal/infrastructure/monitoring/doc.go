/*
Package monitoring provides Prometheus metrics for tracing sessions.

# Overview

Each Metrics instance owns its own prometheus.Registry, so several tracers (or
tests) can live in one process without colliding on the default registerer.

# Metrics

- traces by convention (positional, keyed) and outcome
- nodes recorded by IR kind
- foreign calls recorded
- diagnostic warnings emitted
- trace duration

# Usage

	metrics := monitoring.NewMetrics("tracer")
	state, outs, err := tracer.Trace(ctx, inputs, fn, tracer.WithMetrics(metrics))

	// Expose for scraping
	http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
*/
package monitoring
