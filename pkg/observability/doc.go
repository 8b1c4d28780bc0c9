/*
Package observability turns automaton lifecycle hooks into Prometheus metrics
and structured log records.

	metrics, _ := observability.NewMetrics(prometheus.NewRegistry())
	a, _ := pushdown.New(def, pushdown.WithLifecycleHooks(
		observability.Chain(metrics.Hooks("parens"), observability.LoggingHooks(logger)),
	))
*/
package observability
