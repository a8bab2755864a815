package daemon_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"hireline/internal/api"
	"hireline/internal/stagegraph"
	"hireline/internal/testsupport"
)

func TestAPIApplyAndFetch(t *testing.T) {
	d, cfg, st := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	job := testsupport.SeedJob(t, st, "company-1", "Backend Engineer")
	base := "http://" + d.Addr()

	candidate := api.NewClient(base, cfg.Paths.APIToken, api.ActorHeaders{ID: "cand-1", Role: "candidate"})
	app, err := candidate.Apply(ctx, job.ID)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.Stage != string(stagegraph.StageApplied) {
		t.Fatalf("stage = %s, want applied", app.Stage)
	}

	fetched, err := candidate.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if fetched.ID != app.ID {
		t.Fatalf("unexpected application: %+v", fetched)
	}

	own, err := candidate.ListOwnApplications(ctx)
	if err != nil {
		t.Fatalf("ListOwnApplications: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("own list length = %d, want 1", len(own))
	}
}

func TestAPIStageChangeAndHistory(t *testing.T) {
	d, cfg, st := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	job := testsupport.SeedJob(t, st, "company-1", "Backend Engineer")
	app := testsupport.NewApplication(t, st, job.ID, "cand-1")
	base := "http://" + d.Addr()

	recruiter := api.NewClient(base, cfg.Paths.APIToken, api.ActorHeaders{ID: "rec-1", Role: "recruiter", Company: "company-1"})
	updated, err := recruiter.ChangeStage(ctx, app.ID, "screening")
	if err != nil {
		t.Fatalf("ChangeStage: %v", err)
	}
	if updated.Stage != "screening" {
		t.Fatalf("stage = %s, want screening", updated.Stage)
	}

	entries, err := recruiter.History(ctx, app.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 || entries[0].NewStage != "screening" {
		t.Fatalf("unexpected history: %+v", entries)
	}

	apps, err := recruiter.ListJobApplications(ctx, job.ID, "screening")
	if err != nil {
		t.Fatalf("ListJobApplications: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("filtered list length = %d, want 1", len(apps))
	}
}

func TestAPIErrorMapping(t *testing.T) {
	d, cfg, st := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	job := testsupport.SeedJob(t, st, "company-1", "Backend Engineer")
	app := testsupport.NewApplication(t, st, job.ID, "cand-1")
	base := "http://" + d.Addr()

	recruiter := api.NewClient(base, cfg.Paths.APIToken, api.ActorHeaders{ID: "rec-1", Role: "recruiter", Company: "company-1"})
	candidate := api.NewClient(base, cfg.Paths.APIToken, api.ActorHeaders{ID: "cand-2", Role: "candidate"})
	outsider := api.NewClient(base, cfg.Paths.APIToken, api.ActorHeaders{ID: "rec-9", Role: "recruiter", Company: "company-2"})

	var apiErr *api.StatusError

	if _, err := recruiter.GetApplication(ctx, "no-such-id"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if _, err := outsider.ChangeStage(ctx, app.ID, "screening"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if _, err := recruiter.ChangeStage(ctx, app.ID, "offer"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	} else {
		if apiErr.Body.CurrentStage != "applied" || apiErr.Body.AttemptedStage != "offer" {
			t.Fatalf("expected stage detail in 422 body, got %+v", apiErr.Body)
		}
	}
	if _, err := candidate.Apply(ctx, job.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := candidate.Apply(ctx, job.ID); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if _, err := recruiter.ChangeStage(ctx, app.ID, "bogus"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown stage, got %v", err)
	}
}

func TestAPIRequiresActorHeaders(t *testing.T) {
	d, cfg, _ := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	base := "http://" + d.Addr()

	anonymous := api.NewClient(base, cfg.Paths.APIToken, api.ActorHeaders{})
	var apiErr *api.StatusError
	if _, err := anonymous.ListOwnApplications(ctx); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor headers, got %v", err)
	}

	// Status is identity-free.
	status, err := anonymous.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon status")
	}
}

func TestAPIBearerTokenEnforced(t *testing.T) {
	d, _, _ := newDaemon(t, testsupport.WithAPIToken("secret"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	base := "http://" + d.Addr()

	var apiErr *api.StatusError
	wrong := api.NewClient(base, "nope", api.ActorHeaders{ID: "cand-1", Role: "candidate"})
	if _, err := wrong.Status(ctx); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %v", err)
	}

	right := api.NewClient(base, "secret", api.ActorHeaders{ID: "cand-1", Role: "candidate"})
	if _, err := right.Status(ctx); err != nil {
		t.Fatalf("Status with token: %v", err)
	}
}
