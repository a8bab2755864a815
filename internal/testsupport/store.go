package testsupport

import (
	"context"
	"testing"

	"hireline/internal/config"
	"hireline/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedJob creates an open job for tests using the provided store.
func SeedJob(t testing.TB, st *store.Store, companyID, title string) *store.Job {
	t.Helper()

	job, err := st.CreateJob(context.Background(), companyID, title)
	if err != nil {
		t.Fatalf("store.CreateJob: %v", err)
	}
	return job
}

// NewApplication creates an application for tests using the provided store.
func NewApplication(t testing.TB, st *store.Store, jobID, candidateID string) *store.Application {
	t.Helper()

	app, err := st.CreateApplication(context.Background(), jobID, candidateID)
	if err != nil {
		t.Fatalf("store.CreateApplication: %v", err)
	}
	return app
}
