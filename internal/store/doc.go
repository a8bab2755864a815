// Package store persists applications, their audit history, and the minimal
// job records the workflow needs, backed by SQLite.
//
// The Store owns database connections, schema migrations, and the atomic
// stage transition: a single transaction compare-and-swaps the application's
// stage and appends exactly one history row, so either both effects are
// visible or neither is. Concurrent transitions against the same application
// are serialized by the stage compare; the loser receives ErrStageConflict
// and must re-read before retrying.
//
// Treat this package as the single source of truth for persistence
// semantics; when you add columns, add a migration file and extend the scan
// helpers together.
package store
