package authz_test

import (
	"testing"

	"hireline/internal/authz"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name         string
		actor        authz.Actor
		jobCompanyID string
		want         bool
	}{
		{"recruiter same company", authz.Actor{ID: "u1", Role: authz.RoleRecruiter, CompanyID: "acme"}, "acme", true},
		{"hiring manager same company", authz.Actor{ID: "u2", Role: authz.RoleHiringManager, CompanyID: "acme"}, "acme", true},
		{"recruiter other company", authz.Actor{ID: "u1", Role: authz.RoleRecruiter, CompanyID: "globex"}, "acme", false},
		{"candidate never transitions", authz.Actor{ID: "u3", Role: authz.RoleCandidate}, "acme", false},
		{"recruiter without affiliation", authz.Actor{ID: "u4", Role: authz.RoleRecruiter}, "acme", false},
		{"empty company on both sides", authz.Actor{ID: "u5", Role: authz.RoleRecruiter}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := authz.CanTransition(tc.actor, tc.jobCompanyID); got != tc.want {
				t.Fatalf("CanTransition = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanView(t *testing.T) {
	cases := []struct {
		name         string
		actor        authz.Actor
		candidateID  string
		jobCompanyID string
		want         bool
	}{
		{"owning candidate", authz.Actor{ID: "cand-1", Role: authz.RoleCandidate}, "cand-1", "acme", true},
		{"other candidate", authz.Actor{ID: "cand-2", Role: authz.RoleCandidate}, "cand-1", "acme", false},
		{"recruiter same company", authz.Actor{ID: "u1", Role: authz.RoleRecruiter, CompanyID: "acme"}, "cand-1", "acme", true},
		{"recruiter other company", authz.Actor{ID: "u1", Role: authz.RoleRecruiter, CompanyID: "globex"}, "cand-1", "acme", false},
		{"hiring manager same company", authz.Actor{ID: "u2", Role: authz.RoleHiringManager, CompanyID: "acme"}, "cand-1", "acme", true},
		{"candidate with empty id", authz.Actor{Role: authz.RoleCandidate}, "", "acme", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := authz.CanView(tc.actor, tc.candidateID, tc.jobCompanyID); got != tc.want {
				t.Fatalf("CanView = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanCreateApplication(t *testing.T) {
	candidate := authz.Actor{ID: "cand-1", Role: authz.RoleCandidate}
	recruiter := authz.Actor{ID: "u1", Role: authz.RoleRecruiter, CompanyID: "acme"}

	if !authz.CanCreateApplication(candidate, true) {
		t.Fatal("expected candidate to be allowed to apply to an open job")
	}
	if authz.CanCreateApplication(candidate, false) {
		t.Fatal("expected closed job to deny application creation")
	}
	if authz.CanCreateApplication(recruiter, true) {
		t.Fatal("expected recruiter to be denied application creation")
	}
}

func TestCanListJobApplications(t *testing.T) {
	if !authz.CanListJobApplications(authz.Actor{ID: "u1", Role: authz.RoleRecruiter, CompanyID: "acme"}, "acme") {
		t.Fatal("expected recruiter of owning company to list applications")
	}
	if authz.CanListJobApplications(authz.Actor{ID: "u1", Role: authz.RoleRecruiter, CompanyID: "globex"}, "acme") {
		t.Fatal("expected recruiter of another company to be denied")
	}
	if authz.CanListJobApplications(authz.Actor{ID: "cand-1", Role: authz.RoleCandidate}, "acme") {
		t.Fatal("expected candidate to be denied job application listing")
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		input string
		want  authz.Role
		ok    bool
	}{
		{"candidate", authz.RoleCandidate, true},
		{" Recruiter ", authz.RoleRecruiter, true},
		{"HIRING_MANAGER", authz.RoleHiringManager, true},
		{"", "", false},
		{"admin", "", false},
	}
	for _, tc := range cases {
		got, ok := authz.ParseRole(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseRole(%q) ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseRole(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}
