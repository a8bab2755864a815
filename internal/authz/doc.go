// Package authz decides whether an actor may act on an application or job.
//
// Actors arrive pre-authenticated from the fronting auth layer; this package
// trusts the supplied identity and evaluates pure predicates over the actor's
// role, ownership, and company affiliation. Predicates never return errors
// and never partially grant an action; a false answer is a terminal denial
// for that request.
package authz
