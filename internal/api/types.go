package api

import (
	"hireline/internal/store"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Application describes an application in a transport-friendly format.
type Application struct {
	ID          string `json:"id"`
	JobID       string `json:"jobId"`
	CandidateID string `json:"candidateId"`
	Stage       string `json:"stage"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// HistoryEntry describes one audit row for an application.
type HistoryEntry struct {
	ID            int64  `json:"id"`
	ApplicationID string `json:"applicationId"`
	OldStage      string `json:"oldStage"`
	NewStage      string `json:"newStage"`
	ChangedBy     string `json:"changedBy"`
	ChangedAt     string `json:"changedAt,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"databasePath"`
	LockFilePath string         `json:"lockFilePath"`
	StageCounts  map[string]int `json:"stageCounts"`
}

// StageChangeRequest asks the daemon to move an application to a new stage.
type StageChangeRequest struct {
	Stage string `json:"stage"`
}

// ApplicationResponse wraps a single application.
type ApplicationResponse struct {
	Application Application `json:"application"`
}

// ApplicationListResponse wraps a collection of applications.
type ApplicationListResponse struct {
	Applications []Application `json:"applications"`
}

// HistoryResponse wraps an application's audit trail.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// ErrorBody is the JSON error payload for every non-2xx response. The stage
// fields are populated only for refused stage moves.
type ErrorBody struct {
	Error          string `json:"error"`
	CurrentStage   string `json:"currentStage,omitempty"`
	AttemptedStage string `json:"attemptedStage,omitempty"`
}

// FromApplication converts a stored application to its API representation.
func FromApplication(app *store.Application) Application {
	if app == nil {
		return Application{}
	}
	dto := Application{
		ID:          app.ID,
		JobID:       app.JobID,
		CandidateID: app.CandidateID,
		Stage:       string(app.Stage),
	}
	if !app.CreatedAt.IsZero() {
		dto.CreatedAt = app.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !app.UpdatedAt.IsZero() {
		dto.UpdatedAt = app.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromApplications converts a slice of stored applications.
func FromApplications(apps []*store.Application) []Application {
	if len(apps) == 0 {
		return nil
	}
	out := make([]Application, 0, len(apps))
	for _, app := range apps {
		out = append(out, FromApplication(app))
	}
	return out
}

// FromHistoryEntry converts a stored audit row to its API representation.
func FromHistoryEntry(entry store.HistoryEntry) HistoryEntry {
	dto := HistoryEntry{
		ID:            entry.ID,
		ApplicationID: entry.ApplicationID,
		OldStage:      string(entry.OldStage),
		NewStage:      string(entry.NewStage),
		ChangedBy:     entry.ChangedBy,
	}
	if !entry.ChangedAt.IsZero() {
		dto.ChangedAt = entry.ChangedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromHistory converts a slice of stored audit rows.
func FromHistory(entries []store.HistoryEntry) []HistoryEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromHistoryEntry(entry))
	}
	return out
}
