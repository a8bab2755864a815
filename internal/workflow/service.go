package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hireline/internal/authz"
	"hireline/internal/config"
	"hireline/internal/logging"
	"hireline/internal/metrics"
	"hireline/internal/notifications"
	"hireline/internal/stagegraph"
	"hireline/internal/store"
)

// Repository is the persistence surface the service needs. *store.Store
// satisfies it.
type Repository interface {
	GetJob(ctx context.Context, id string) (*store.Job, error)
	GetApplication(ctx context.Context, id string) (*store.Application, error)
	CreateApplication(ctx context.Context, jobID, candidateID string) (*store.Application, error)
	Transition(ctx context.Context, id string, from, to stagegraph.Stage, actorID string) (*store.Application, *store.HistoryEntry, error)
	History(ctx context.Context, applicationID string) ([]store.HistoryEntry, error)
	ListByJob(ctx context.Context, jobID string, stages ...stagegraph.Stage) ([]*store.Application, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]*store.Application, error)
}

// Service applies the hiring workflow rules on top of the repository.
type Service struct {
	repo          Repository
	sink          notifications.Sink
	logger        *slog.Logger
	collector     *metrics.Collector
	notifyTimeout time.Duration
}

// NewService wires the workflow service. logger and collector may be nil.
func NewService(repo Repository, sink notifications.Sink, logger *slog.Logger, collector *metrics.Collector, cfg *config.Config) *Service {
	timeout := 5 * time.Second
	if cfg != nil && cfg.Workflow.NotifyTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Workflow.NotifyTimeoutSeconds) * time.Second
	}
	return &Service{
		repo:          repo,
		sink:          sink,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		collector:     collector,
		notifyTimeout: timeout,
	}
}

// ApplyToJob submits a new application for the acting candidate. Only
// candidates may apply; closed jobs refuse new applications with ErrConflict.
func (s *Service) ApplyToJob(ctx context.Context, actor authz.Actor, jobID string) (*store.Application, error) {
	if actor.Role != authz.RoleCandidate {
		return nil, fmt.Errorf("%w: only candidates may apply", ErrForbidden)
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	if !authz.CanCreateApplication(actor, job.Open()) {
		return nil, fmt.Errorf("%w: job %s is not accepting applications", ErrConflict, jobID)
	}

	app, err := s.repo.CreateApplication(ctx, jobID, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		case errors.Is(err, store.ErrJobClosed):
			return nil, fmt.Errorf("%w: job %s is not accepting applications", ErrConflict, jobID)
		case errors.Is(err, store.ErrDuplicateApplication):
			return nil, fmt.Errorf("%w: candidate already applied to job %s", ErrConflict, jobID)
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	ctx = logging.WithApplicationID(logging.WithActorID(ctx, actor.ID), app.ID)
	logging.WithContext(ctx, s.logger).Info("application submitted",
		logging.String(logging.FieldJobID, jobID),
	)
	s.emit(ctx, notifications.Intent{
		Kind:          notifications.KindSubmitted,
		ApplicationID: app.ID,
		Recipients:    []string{actor.ID},
		Payload: map[string]string{
			"job_id":     jobID,
			"company_id": job.CompanyID,
			"stage":      string(app.Stage),
		},
	})
	return app, nil
}

// ChangeStage moves an application to the requested stage on behalf of a
// staff actor. The move is validated against the stage observed in this call;
// if a concurrent writer commits first, the service re-reads the stage and
// retries exactly once before reporting ErrConflict.
func (s *Service) ChangeStage(ctx context.Context, actor authz.Actor, applicationID string, to stagegraph.Stage) (*store.Application, *store.HistoryEntry, error) {
	app, job, err := s.lookup(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanTransition(actor, job.CompanyID) {
		s.collector.TransitionRejected()
		return nil, nil, fmt.Errorf("%w: actor %s may not transition application %s", ErrForbidden, actor.ID, applicationID)
	}

	ctx = logging.WithApplicationID(logging.WithActorID(ctx, actor.ID), applicationID)
	current := app.Stage
	for attempt := 0; ; attempt++ {
		if !stagegraph.IsLegal(current, to) {
			s.collector.TransitionRejected()
			return nil, nil, &TransitionError{Current: current, Attempted: to}
		}

		updated, entry, err := s.repo.Transition(ctx, applicationID, current, to, actor.ID)
		if err == nil {
			s.collector.TransitionApplied()
			logging.WithContext(ctx, s.logger).Info("stage changed",
				logging.String(logging.FieldStage, string(to)),
				logging.String("old_stage", string(current)),
			)
			s.emit(ctx, notifications.Intent{
				Kind:          notifications.KindStageChanged,
				ApplicationID: applicationID,
				Recipients:    []string{updated.CandidateID},
				Payload: map[string]string{
					"old_stage": string(entry.OldStage),
					"new_stage": string(entry.NewStage),
					"job_id":    updated.JobID,
				},
			})
			return updated, entry, nil
		}

		switch {
		case errors.Is(err, store.ErrStageConflict):
			s.collector.TransitionConflict()
			if attempt > 0 {
				return nil, nil, fmt.Errorf("%w: application %s changed concurrently", ErrConflict, applicationID)
			}
			fresh, ferr := s.repo.GetApplication(ctx, applicationID)
			if ferr != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, ferr)
			}
			if fresh == nil {
				return nil, nil, fmt.Errorf("%w: application %s", ErrNotFound, applicationID)
			}
			current = fresh.Stage
		case errors.Is(err, store.ErrIllegalStage):
			s.collector.TransitionRejected()
			return nil, nil, &TransitionError{Current: current, Attempted: to}
		case errors.Is(err, store.ErrNotFound):
			return nil, nil, fmt.Errorf("%w: application %s", ErrNotFound, applicationID)
		default:
			return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
}

// GetApplication fetches one application, visible only to its candidate and
// to staff of the owning company.
func (s *Service) GetApplication(ctx context.Context, actor authz.Actor, applicationID string) (*store.Application, error) {
	app, job, err := s.lookup(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(actor, app.CandidateID, job.CompanyID) {
		return nil, fmt.Errorf("%w: actor %s may not view application %s", ErrForbidden, actor.ID, applicationID)
	}
	return app, nil
}

// History returns the ordered audit trail for an application, under the same
// visibility rule as GetApplication.
func (s *Service) History(ctx context.Context, actor authz.Actor, applicationID string) ([]store.HistoryEntry, error) {
	app, job, err := s.lookup(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(actor, app.CandidateID, job.CompanyID) {
		return nil, fmt.Errorf("%w: actor %s may not view application %s", ErrForbidden, actor.ID, applicationID)
	}
	entries, err := s.repo.History(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return entries, nil
}

// ListJobApplications returns a job's applications for staff of the owning
// company, optionally filtered by stage.
func (s *Service) ListJobApplications(ctx context.Context, actor authz.Actor, jobID string, stages ...stagegraph.Stage) ([]*store.Application, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	if !authz.CanListJobApplications(actor, job.CompanyID) {
		return nil, fmt.Errorf("%w: actor %s may not list applications for job %s", ErrForbidden, actor.ID, jobID)
	}
	apps, err := s.repo.ListByJob(ctx, jobID, stages...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return apps, nil
}

// ListOwnApplications returns the acting candidate's applications across jobs.
func (s *Service) ListOwnApplications(ctx context.Context, actor authz.Actor) ([]*store.Application, error) {
	if actor.Role != authz.RoleCandidate || actor.ID == "" {
		return nil, fmt.Errorf("%w: only candidates list their own applications", ErrForbidden)
	}
	apps, err := s.repo.ListByCandidate(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return apps, nil
}

func (s *Service) lookup(ctx context.Context, applicationID string) (*store.Application, *store.Job, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if app == nil {
		return nil, nil, fmt.Errorf("%w: application %s", ErrNotFound, applicationID)
	}
	job, err := s.repo.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if job == nil {
		return nil, nil, fmt.Errorf("%w: job %s", ErrNotFound, app.JobID)
	}
	return app, job, nil
}

// emit publishes a notification intent after the mutation committed. The
// intent is detached from the request's cancellation so an abandoned HTTP
// client cannot suppress it, but it still runs under a bounded deadline.
// Failures are logged and counted, never returned.
func (s *Service) emit(ctx context.Context, intent notifications.Intent) {
	if s.sink == nil {
		return
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	err := s.sink.Publish(publishCtx, intent)
	switch {
	case err == nil:
		s.collector.NotificationPublished(string(intent.Kind))
	case errors.Is(err, notifications.ErrSuppressed):
		s.collector.NotificationSuppressed(string(intent.Kind))
	default:
		s.collector.NotificationFailed(string(intent.Kind))
		logging.WithContext(ctx, s.logger).Warn("notification intent failed",
			logging.String("kind", string(intent.Kind)),
			logging.Error(err),
		)
	}
}
