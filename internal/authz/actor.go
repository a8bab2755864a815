package authz

import "strings"

// Role is the closed set of actor roles known to the policy.
type Role string

const (
	RoleCandidate     Role = "candidate"
	RoleRecruiter     Role = "recruiter"
	RoleHiringManager Role = "hiring_manager"
)

var roleSet = map[Role]struct{}{
	RoleCandidate:     {},
	RoleRecruiter:     {},
	RoleHiringManager: {},
}

// ParseRole converts a string into a known Role.
func ParseRole(value string) (Role, bool) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := roleSet[normalized]
	return normalized, ok
}

// Actor is the authenticated identity a request acts as. CompanyID is empty
// for candidates and carries the employer affiliation for staff roles.
type Actor struct {
	ID        string
	Role      Role
	CompanyID string
}

// Staff reports whether the actor holds a company-side role.
func (a Actor) Staff() bool {
	return a.Role == RoleRecruiter || a.Role == RoleHiringManager
}

// SameCompany reports whether the actor is affiliated with the given company.
// An empty company on either side never matches.
func (a Actor) SameCompany(companyID string) bool {
	return a.CompanyID != "" && a.CompanyID == companyID
}
