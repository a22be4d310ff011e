/*
Package observability turns the dialog router's lifecycle hooks into Prometheus metrics
and structured log lines.

Both producers return domain.LifecycleHooks, so they compose with Merge:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
*/
package observability
