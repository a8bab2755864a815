package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateJob inserts a new open job owned by a company.
func (s *Store) CreateJob(ctx context.Context, companyID, title string) (*Job, error) {
	if companyID == "" {
		return nil, errors.New("company id is required")
	}
	if title == "" {
		return nil, errors.New("job title is required")
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (id, company_id, title, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		companyID,
		title,
		JobStatusOpen,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.GetJob(ctx, id)
}

// GetJob fetches a job by identifier. Returns nil when absent.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT id, company_id, title, status, created_at FROM jobs WHERE id = ?`,
		id,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// CloseJob marks a job as no longer accepting applications.
func (s *Store) CloseJob(ctx context.Context, id string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ? WHERE id = ?`,
		JobStatusClosed,
		id,
	)
	if err != nil {
		return fmt.Errorf("close job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id         string
		companyID  string
		title      string
		status     string
		createdRaw string
	)
	if err := scanner.Scan(&id, &companyID, &title, &status, &createdRaw); err != nil {
		return nil, err
	}
	job := &Job{
		ID:        id,
		CompanyID: companyID,
		Title:     title,
		Status:    JobStatus(status),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	return job, nil
}
