package store

import (
	"time"

	"hireline/internal/stagegraph"
)

// JobStatus represents whether a job accepts new applications.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// Job is the minimal job record the workflow core needs: identity, owning
// company, and whether it accepts applications.
type Job struct {
	ID        string
	CompanyID string
	Title     string
	Status    JobStatus
	CreatedAt time.Time
}

// Open reports whether the job accepts new applications.
func (j Job) Open() bool {
	return j.Status == JobStatusOpen
}

// Application represents one candidate's pursuit of one job.
type Application struct {
	ID          string
	JobID       string
	CandidateID string
	Stage       stagegraph.Stage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HistoryEntry is an immutable audit record of one committed stage change.
type HistoryEntry struct {
	ID            int64
	ApplicationID string
	OldStage      stagegraph.Stage
	NewStage      stagegraph.Stage
	ChangedBy     string
	ChangedAt     time.Time
}
