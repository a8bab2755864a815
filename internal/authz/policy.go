package authz

// CanTransition reports whether the actor may change the stage of an
// application whose job belongs to jobCompanyID. Only staff of the owning
// company qualify; candidates never do, including on their own applications.
func CanTransition(actor Actor, jobCompanyID string) bool {
	return actor.Staff() && actor.SameCompany(jobCompanyID)
}

// CanView reports whether the actor may read an application. The owning
// candidate may, as may staff of the company owning the application's job.
func CanView(actor Actor, candidateID, jobCompanyID string) bool {
	if actor.Role == RoleCandidate {
		return actor.ID != "" && actor.ID == candidateID
	}
	return actor.Staff() && actor.SameCompany(jobCompanyID)
}

// CanCreateApplication reports whether the actor may apply to a job. Only
// candidates apply, and only while the job is open.
func CanCreateApplication(actor Actor, jobOpen bool) bool {
	return actor.Role == RoleCandidate && jobOpen
}

// CanListJobApplications reports whether the actor may list the applications
// submitted to a job. Staff of the job's company only.
func CanListJobApplications(actor Actor, jobCompanyID string) bool {
	return actor.Staff() && actor.SameCompany(jobCompanyID)
}
