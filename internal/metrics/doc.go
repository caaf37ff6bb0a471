// Package metrics collects request and upstream metrics for the dashboard.
//
// Events flow through a buffered channel into a single collector goroutine,
// which maintains:
//   - Request counts per route
//   - Results API call counts and transport failures
//   - Results API response times with percentiles (P50, P95, P99)
//   - Results API status code distribution
//   - The last known Results API health status
//
// Sends never block the request path: when the buffer is full the event is
// dropped.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventUpstreamCompleted,
//		Duration:   150 * time.Millisecond,
//		StatusCode: 200,
//	})
//
//	snapshot := collector.Snapshot("http://localhost:8004")
//
// Queued events are drained when the context passed to Start is cancelled.
package metrics
