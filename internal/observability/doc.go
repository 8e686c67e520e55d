// Package observability groups the logging, metrics and tracing helpers
// shared by the worker and the CLI.
//
// Subpackages:
//   - logging: slog loggers, run ID propagation and error sanitizing
//   - metrics: Prometheus metrics for sources and compaction
//   - tracing: OpenTelemetry span helpers
package observability
