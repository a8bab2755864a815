package workflow

import (
	"errors"
	"fmt"

	"hireline/internal/stagegraph"
)

var (
	// ErrNotFound indicates the referenced job or application does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition indicates the requested stage move violates the
	// stage graph.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict indicates the operation lost a concurrency race or the
	// target no longer accepts it.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable indicates a dependency failure unrelated to the request.
	ErrUnavailable = errors.New("unavailable")
)

// TransitionError reports an illegal stage move with enough detail for a
// caller to render the observed and attempted stages.
type TransitionError struct {
	Current   stagegraph.Stage
	Attempted stagegraph.Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move application from %s to %s", e.Current, e.Attempted)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
