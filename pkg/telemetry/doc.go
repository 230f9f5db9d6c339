// Package telemetry connects a reactive.Runtime to Prometheus,
// OpenTelemetry and zap.
//
// Metrics and Tracer both implement reactive.Instrumentation and can be
// attached together with Combine:
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("todo"))
//	rt := reactive.NewRuntime(
//	    reactive.WithInstrumentation(telemetry.Combine(m, telemetry.NewTracer())),
//	    reactive.WithErrorHandler(telemetry.ZapHandler(logger)),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
//
// CountingHost wraps a vdom.Host so that every host operation the
// patcher performs is counted.
package telemetry
