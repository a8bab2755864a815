// Package logging builds the slog loggers used across the daemon and CLI.
//
// It supports a human-oriented console format and a machine-oriented JSON
// format, multi-destination output (stdout plus a log file), standardized
// field keys for workflow entities, and context-derived attributes so every
// log line for a request carries the same correlation identifiers.
package logging
