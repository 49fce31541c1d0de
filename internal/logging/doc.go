// Package logging provides structured logging built on log/slog.
//
// All pipeline components log through loggers constructed here so output
// carries consistent field keys (component, job_id, stage, event_type).
// Console output uses a compact human-readable handler when attached to a
// terminal; otherwise JSON lines are emitted for machine consumption.
package logging
