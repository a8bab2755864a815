package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"hireline/internal/authz"
	"hireline/internal/logging"
	"hireline/internal/notifications"
	"hireline/internal/stagegraph"
	"hireline/internal/store"
	"hireline/internal/testsupport"
	"hireline/internal/workflow"
)

type fixture struct {
	store     *store.Store
	sink      *testsupport.RecorderSink
	service   *workflow.Service
	job       *store.Job
	candidate authz.Actor
	recruiter authz.Actor
	manager   authz.Actor
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	sink := &testsupport.RecorderSink{}
	svc := workflow.NewService(st, sink, nil, nil, cfg)
	job := testsupport.SeedJob(t, st, "company-1", "Backend Engineer")

	return &fixture{
		store:     st,
		sink:      sink,
		service:   svc,
		job:       job,
		candidate: authz.Actor{ID: "cand-1", Role: authz.RoleCandidate},
		recruiter: authz.Actor{ID: "rec-1", Role: authz.RoleRecruiter, CompanyID: "company-1"},
		manager:   authz.Actor{ID: "mgr-1", Role: authz.RoleHiringManager, CompanyID: "company-1"},
	}
}

func TestApplyToJobCreatesApplicationAndEmitsIntent(t *testing.T) {
	f := newFixture(t)

	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	if app.Stage != stagegraph.StageApplied {
		t.Fatalf("stage = %s, want %s", app.Stage, stagegraph.StageApplied)
	}

	intents := f.sink.Intents()
	if len(intents) != 1 {
		t.Fatalf("intent count = %d, want 1", len(intents))
	}
	if intents[0].Kind != notifications.KindSubmitted || intents[0].ApplicationID != app.ID {
		t.Fatalf("unexpected intent: %+v", intents[0])
	}
}

func TestApplyToJobRequiresCandidateRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ApplyToJob(context.Background(), f.recruiter, f.job.ID)
	if !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(f.sink.Intents()) != 0 {
		t.Fatal("forbidden apply must not emit intents")
	}
}

func TestApplyToMissingJob(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ApplyToJob(context.Background(), f.candidate, "no-such-job")
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyToClosedJobConflicts(t *testing.T) {
	f := newFixture(t)
	if err := f.store.CloseJob(context.Background(), f.job.ID); err != nil {
		t.Fatalf("CloseJob: %v", err)
	}

	_, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if !errors.Is(err, workflow.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(f.sink.Intents()) != 0 {
		t.Fatal("refused apply must not emit intents")
	}
}

func TestApplyTwiceConflicts(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	_, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if !errors.Is(err, workflow.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestChangeStageHappyPath(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	f.sink.Reset()

	updated, entry, err := f.service.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageScreening)
	if err != nil {
		t.Fatalf("ChangeStage: %v", err)
	}
	if updated.Stage != stagegraph.StageScreening {
		t.Fatalf("stage = %s, want %s", updated.Stage, stagegraph.StageScreening)
	}
	if entry.OldStage != stagegraph.StageApplied || entry.NewStage != stagegraph.StageScreening {
		t.Fatalf("unexpected history entry: %+v", entry)
	}

	intents := f.sink.Intents()
	if len(intents) != 1 || intents[0].Kind != notifications.KindStageChanged {
		t.Fatalf("unexpected intents: %+v", intents)
	}
	if intents[0].Payload["new_stage"] != string(stagegraph.StageScreening) {
		t.Fatalf("unexpected payload: %+v", intents[0].Payload)
	}
}

func TestChangeStageRejectsCandidates(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}

	_, _, err = f.service.ChangeStage(context.Background(), f.candidate, app.ID, stagegraph.StageScreening)
	if !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestChangeStageRejectsOtherCompanyStaff(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}

	outsider := authz.Actor{ID: "rec-9", Role: authz.RoleRecruiter, CompanyID: "company-2"}
	_, _, err = f.service.ChangeStage(context.Background(), outsider, app.ID, stagegraph.StageScreening)
	if !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestChangeStageRefusesSkippingStages(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	f.sink.Reset()

	_, _, err = f.service.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageOffer)
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	var terr *workflow.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransitionError, got %T", err)
	}
	if terr.Current != stagegraph.StageApplied || terr.Attempted != stagegraph.StageOffer {
		t.Fatalf("unexpected detail: %+v", terr)
	}
	if len(f.sink.Intents()) != 0 {
		t.Fatal("refused transition must not emit intents")
	}
}

func TestChangeStageRefusesMovesOutOfTerminalStage(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	if _, _, err := f.service.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, _, err = f.service.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageScreening)
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestChangeStageMissingApplication(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.service.ChangeStage(context.Background(), f.recruiter, "no-such-id", stagegraph.StageScreening)
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// conflictingRepo makes the first n Transition calls race against a
// background writer that advances the application first.
type conflictingRepo struct {
	workflow.Repository
	store     *store.Store
	remaining int
	rival     stagegraph.Stage
}

func (r *conflictingRepo) Transition(ctx context.Context, id string, from, to stagegraph.Stage, actorID string) (*store.Application, *store.HistoryEntry, error) {
	if r.remaining > 0 {
		r.remaining--
		if _, _, err := r.store.Transition(ctx, id, from, r.rival, "rival"); err != nil {
			return nil, nil, err
		}
	}
	return r.Repository.Transition(ctx, id, from, to, actorID)
}

func TestChangeStageRetriesOnceAfterConflict(t *testing.T) {
	f := newFixture(t)
	app := testsupport.NewApplication(t, f.store, f.job.ID, "cand-2")

	repo := &conflictingRepo{
		Repository: f.store,
		store:      f.store,
		remaining:  1,
		rival:      stagegraph.StageScreening,
	}
	cfg := testsupport.NewConfig(t)
	svc := workflow.NewService(repo, f.sink, nil, nil, cfg)

	// The rival moves applied -> screening first; the retry re-reads
	// screening and finds rejection still legal from there.
	updated, _, err := svc.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageRejected)
	if err != nil {
		t.Fatalf("ChangeStage with retry: %v", err)
	}
	if updated.Stage != stagegraph.StageRejected {
		t.Fatalf("stage = %s, want %s", updated.Stage, stagegraph.StageRejected)
	}

	entries, err := f.store.History(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history length = %d, want 2", len(entries))
	}
}

func TestChangeStageSurfacesPersistentConflict(t *testing.T) {
	f := newFixture(t)
	app := testsupport.NewApplication(t, f.store, f.job.ID, "cand-2")

	repo := &conflictingRepo{
		Repository: f.store,
		store:      f.store,
		remaining:  2,
		rival:      stagegraph.StageRejected,
	}
	cfg := testsupport.NewConfig(t)
	svc := workflow.NewService(repo, f.sink, nil, nil, cfg)

	_, _, err := svc.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageScreening)
	if err == nil {
		t.Fatal("expected error after persistent conflict")
	}
	if !errors.Is(err, workflow.ErrConflict) && !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected conflict or invalid transition, got %v", err)
	}
}

func TestChangeStageSucceedsWhenSinkFails(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	f.sink.Err = errors.New("webhook down")

	updated, _, err := f.service.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageScreening)
	if err != nil {
		t.Fatalf("ChangeStage must not fail on sink error: %v", err)
	}
	if updated.Stage != stagegraph.StageScreening {
		t.Fatalf("stage = %s, want %s", updated.Stage, stagegraph.StageScreening)
	}
}

func TestGetApplicationVisibility(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}

	cases := []struct {
		name    string
		actor   authz.Actor
		wantErr error
	}{
		{"owning candidate", f.candidate, nil},
		{"same company recruiter", f.recruiter, nil},
		{"same company manager", f.manager, nil},
		{"other candidate", authz.Actor{ID: "cand-9", Role: authz.RoleCandidate}, workflow.ErrForbidden},
		{"other company recruiter", authz.Actor{ID: "rec-9", Role: authz.RoleRecruiter, CompanyID: "company-2"}, workflow.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.GetApplication(context.Background(), tc.actor, app.ID)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestHistoryVisibleToOwnerAndStaff(t *testing.T) {
	f := newFixture(t)
	app, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	if _, _, err := f.service.ChangeStage(context.Background(), f.recruiter, app.ID, stagegraph.StageScreening); err != nil {
		t.Fatalf("ChangeStage: %v", err)
	}

	entries, err := f.service.History(context.Background(), f.candidate, app.ID)
	if err != nil {
		t.Fatalf("History as candidate: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history length = %d, want 1", len(entries))
	}

	stranger := authz.Actor{ID: "cand-9", Role: authz.RoleCandidate}
	if _, err := f.service.History(context.Background(), stranger, app.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListJobApplicationsStaffOnly(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID); err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	other := authz.Actor{ID: "cand-2", Role: authz.RoleCandidate}
	if _, err := f.service.ApplyToJob(context.Background(), other, f.job.ID); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	apps, err := f.service.ListJobApplications(context.Background(), f.recruiter, f.job.ID)
	if err != nil {
		t.Fatalf("ListJobApplications: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("list length = %d, want 2", len(apps))
	}

	if _, err := f.service.ListJobApplications(context.Background(), f.candidate, f.job.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for candidate, got %v", err)
	}
	if _, err := f.service.ListJobApplications(context.Background(), f.recruiter, "no-such-job"); !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	filtered, err := f.service.ListJobApplications(context.Background(), f.recruiter, f.job.ID, stagegraph.StageApplied)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered length = %d, want 2", len(filtered))
	}
}

func TestListOwnApplications(t *testing.T) {
	f := newFixture(t)
	jobB := testsupport.SeedJob(t, f.store, "company-2", "Data Engineer")
	if _, err := f.service.ApplyToJob(context.Background(), f.candidate, f.job.ID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := f.service.ApplyToJob(context.Background(), f.candidate, jobB.ID); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	apps, err := f.service.ListOwnApplications(context.Background(), f.candidate)
	if err != nil {
		t.Fatalf("ListOwnApplications: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("list length = %d, want 2", len(apps))
	}

	if _, err := f.service.ListOwnApplications(context.Background(), f.recruiter); !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for staff, got %v", err)
	}
}

func TestLogsCarryRequestFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	sink := &testsupport.RecorderSink{}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := workflow.NewService(st, sink, logger, nil, cfg)
	job := testsupport.SeedJob(t, st, "company-1", "Backend Engineer")

	ctx := logging.WithCorrelationID(context.Background(), "req-42")
	candidate := authz.Actor{ID: "cand-1", Role: authz.RoleCandidate}
	app, err := svc.ApplyToJob(ctx, candidate, job.ID)
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	recruiter := authz.Actor{ID: "rec-1", Role: authz.RoleRecruiter, CompanyID: "company-1"}
	if _, _, err := svc.ChangeStage(ctx, recruiter, app.ID, stagegraph.StageScreening); err != nil {
		t.Fatalf("ChangeStage: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"correlation_id=req-42",
		"application_id=" + app.ID,
		"actor_id=rec-1",
		"component=workflow",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSuppressedIntentIsNotADeliveryFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	sink := &testsupport.RecorderSink{Err: notifications.ErrSuppressed}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := workflow.NewService(st, sink, logger, nil, cfg)
	job := testsupport.SeedJob(t, st, "company-1", "Backend Engineer")

	candidate := authz.Actor{ID: "cand-1", Role: authz.RoleCandidate}
	if _, err := svc.ApplyToJob(context.Background(), candidate, job.ID); err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	if strings.Contains(buf.String(), "notification intent failed") {
		t.Fatalf("config-suppressed intent logged as a failure:\n%s", buf.String())
	}
}
