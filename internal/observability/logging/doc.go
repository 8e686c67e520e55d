// Package logging provides structured logging utilities with context propagation.
//
// Key features:
//   - JSON and text output formats
//   - Run ID propagation for scheduled announcement runs
//   - Context-aware logging
//   - Masking of webhook tokens before errors are logged
//
// Example usage:
//
//	logger := logging.NewLogger()
//	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
//	logging.WithRunID(ctx, logger).Info("run started")
package logging
