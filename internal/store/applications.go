package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hireline/internal/stagegraph"
)

const applicationColumns = "id, job_id, candidate_id, stage, created_at, updated_at"

// CreateApplication inserts a new application at the initial stage. It fails
// with ErrNotFound when the job is absent, ErrJobClosed when the job no
// longer accepts applications, and ErrDuplicateApplication when the candidate
// already has an application for the job that the reapply policy does not
// permit replacing.
func (s *Store) CreateApplication(ctx context.Context, jobID, candidateID string) (*Application, error) {
	if jobID == "" {
		return nil, errors.New("job id is required")
	}
	if candidateID == "" {
		return nil, errors.New("candidate id is required")
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	timestamp := formatTime(now)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var jobStatus string
		row := tx.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = ?`, jobID)
		if err := row.Scan(&jobStatus); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("read job: %w", err)
		}
		if JobStatus(jobStatus) != JobStatusOpen {
			return ErrJobClosed
		}

		rows, err := tx.QueryContext(
			ctx,
			`SELECT stage FROM applications WHERE job_id = ? AND candidate_id = ?`,
			jobID,
			candidateID,
		)
		if err != nil {
			return fmt.Errorf("read prior applications: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var stage string
			if err := rows.Scan(&stage); err != nil {
				return fmt.Errorf("scan prior stage: %w", err)
			}
			if stagegraph.Stage(stage) != stagegraph.StageRejected {
				return ErrDuplicateApplication
			}
			if !s.allowReapply {
				return ErrDuplicateApplication
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate prior applications: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO applications (id, job_id, candidate_id, stage, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			id,
			jobID,
			candidateID,
			stagegraph.Initial(),
			timestamp,
			timestamp,
		); err != nil {
			return fmt.Errorf("insert application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetApplication(ctx, id)
}

// GetApplication fetches an application by identifier. Returns nil when absent.
func (s *Store) GetApplication(ctx context.Context, id string) (*Application, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`,
		id,
	)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// Transition atomically moves an application from the observed stage to a new
// stage and appends exactly one history entry, as a single transaction.
// ErrStageConflict reports that the row's stage no longer matches from;
// ErrIllegalStage reports a move the stage graph forbids. The legality check
// is repeated here even though callers validate first, to close races.
func (s *Store) Transition(ctx context.Context, id string, from, to stagegraph.Stage, actorID string) (*Application, *HistoryEntry, error) {
	if actorID == "" {
		return nil, nil, errors.New("actor id is required")
	}

	now := time.Now().UTC()
	timestamp := formatTime(now)

	var (
		app   *Application
		entry *HistoryEntry
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var currentRaw string
		row := tx.QueryRowContext(ctx, `SELECT stage FROM applications WHERE id = ?`, id)
		if err := row.Scan(&currentRaw); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("read current stage: %w", err)
		}
		current := stagegraph.Stage(currentRaw)
		if current != from {
			return ErrStageConflict
		}
		if !stagegraph.IsLegal(current, to) {
			return ErrIllegalStage
		}

		res, err := tx.ExecContext(
			ctx,
			`UPDATE applications SET stage = ?, updated_at = ? WHERE id = ? AND stage = ?`,
			to,
			timestamp,
			id,
			from,
		)
		if err != nil {
			return fmt.Errorf("update stage: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return ErrStageConflict
		}

		histRes, err := tx.ExecContext(
			ctx,
			`INSERT INTO application_history (application_id, old_stage, new_stage, changed_by, changed_at)
             VALUES (?, ?, ?, ?, ?)`,
			id,
			from,
			to,
			actorID,
			timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		histID, err := histRes.LastInsertId()
		if err != nil {
			return fmt.Errorf("history id: %w", err)
		}

		row = tx.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
		updated, err := scanApplication(row)
		if err != nil {
			return fmt.Errorf("read updated application: %w", err)
		}
		app = updated
		entry = &HistoryEntry{
			ID:            histID,
			ApplicationID: id,
			OldStage:      from,
			NewStage:      to,
			ChangedBy:     actorID,
			ChangedAt:     now,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return app, entry, nil
}

// History returns the ordered audit entries for an application.
func (s *Store) History(ctx context.Context, applicationID string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT id, application_id, old_stage, new_stage, changed_by, changed_at
         FROM application_history WHERE application_id = ? ORDER BY changed_at, id`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			entry      HistoryEntry
			oldStage   string
			newStage   string
			changedRaw string
		)
		if err := rows.Scan(&entry.ID, &entry.ApplicationID, &oldStage, &newStage, &entry.ChangedBy, &changedRaw); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.OldStage = stagegraph.Stage(oldStage)
		entry.NewStage = stagegraph.Stage(newStage)
		if changed, err := parseTimeString(changedRaw); err == nil {
			entry.ChangedAt = changed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListByJob returns a job's applications ordered by creation time, optionally
// filtered to a stage set.
func (s *Store) ListByJob(ctx context.Context, jobID string, stages ...stagegraph.Stage) ([]*Application, error) {
	baseQuery := `SELECT ` + applicationColumns + ` FROM applications WHERE job_id = ?`
	orderClause := ` ORDER BY created_at, id`

	var (
		rows *sql.Rows
		err  error
	)
	if len(stages) == 0 {
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+orderClause, jobID)
	} else {
		placeholders := makePlaceholders(len(stages))
		args := make([]any, 0, len(stages)+1)
		args = append(args, jobID)
		for _, stage := range stages {
			args = append(args, stage)
		}
		query := baseQuery + ` AND stage IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ensureContext(ctx), query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list applications by job: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListByCandidate returns a candidate's applications ordered by creation time.
func (s *Store) ListByCandidate(ctx context.Context, candidateID string) ([]*Application, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+applicationColumns+` FROM applications WHERE candidate_id = ? ORDER BY created_at, id`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list applications by candidate: %w", err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// Stats returns a count of applications grouped by stage.
func (s *Store) Stats(ctx context.Context) (map[stagegraph.Stage]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT stage, COUNT(1) FROM applications GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("application stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[stagegraph.Stage]int)
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, err
		}
		stats[stagegraph.Stage(stage)] = count
	}
	return stats, rows.Err()
}

func collectApplications(rows *sql.Rows) ([]*Application, error) {
	var apps []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanApplication(scanner interface{ Scan(dest ...any) error }) (*Application, error) {
	var (
		id          string
		jobID       string
		candidateID string
		stage       string
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &jobID, &candidateID, &stage, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	app := &Application{
		ID:          id,
		JobID:       jobID,
		CandidateID: candidateID,
		Stage:       stagegraph.Stage(stage),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		app.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		app.UpdatedAt = updated
	}
	return app, nil
}
