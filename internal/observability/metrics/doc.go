// Package metrics provides the Prometheus metrics of an announcement run.
//
// All metrics are registered with the default registry through promauto and
// exposed by the worker's /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	entries, err := src.Fetch(ctx)
//	if err != nil {
//	    metrics.RecordSourceError(src.Name, time.Since(start))
//	}
//	metrics.RecordSourceFetched(src.Name, len(entries), time.Since(start))
package metrics
