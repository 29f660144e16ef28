// Package logging assembles structured slog loggers and formatting helpers used
// by the mandelmovie coordinator and its worker processes.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so worker code automatically
// tags log lines with the run id, worker number and frame index. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so that lines from
// every worker process share one shape and can be correlated by run id.
package logging
