// Package notifications emits fire-and-forget notification intents after a
// workflow mutation commits.
//
// An intent names the kind of event, the application it concerns, and the
// recipients; delivery is handed to an external webhook collaborator that
// guarantees at-least-once attempts. Sink failures never roll back the
// committed mutation; the store is the source of truth and callers only log
// and count delivery problems.
package notifications
