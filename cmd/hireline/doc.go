// Command hireline is the CLI for a running hirelined daemon. It submits
// applications, moves them through the hiring stages, and inspects their
// audit history over the daemon's HTTP API.
package main
