// Package daemon runs the long-lived hireline process: it enforces
// single-instance execution with a lock file and serves the HTTP API the CLI
// talks to.
package daemon
