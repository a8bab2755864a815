package store

import "errors"

var (
	// ErrNotFound indicates the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStageConflict indicates the application's stage changed between the
	// caller's read and the attempted write.
	ErrStageConflict = errors.New("stage changed concurrently")
	// ErrDuplicateApplication indicates the candidate already has an
	// application for the job that blocks a new one.
	ErrDuplicateApplication = errors.New("duplicate application")
	// ErrJobClosed indicates the job no longer accepts applications.
	ErrJobClosed = errors.New("job not accepting applications")
	// ErrIllegalStage indicates the requested stage is not a legal successor
	// of the row's current stage.
	ErrIllegalStage = errors.New("illegal stage transition")
)
