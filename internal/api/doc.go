// Package api defines the transport representations shared by the daemon's
// HTTP surface and the CLI client, plus the client itself.
package api
