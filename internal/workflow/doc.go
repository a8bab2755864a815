// Package workflow orchestrates the application lifecycle: it authorizes the
// acting user, validates requested stage moves against the stage graph, asks
// the store to commit the mutation atomically, and emits notification intents
// once the mutation is durable.
//
// Lost optimistic concurrency races surface as ErrConflict after one
// transparent retry against the freshly observed stage. The service never
// masks a conflict as success and never retries more than once.
package workflow
