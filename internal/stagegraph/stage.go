package stagegraph

import "strings"

// Stage identifies where an application sits in the hiring pipeline.
type Stage string

const (
	StageApplied   Stage = "applied"
	StageScreening Stage = "screening"
	StageInterview Stage = "interview"
	StageOffer     Stage = "offer"
	StageHired     Stage = "hired"
	StageRejected  Stage = "rejected"
)

var allStages = []Stage{
	StageApplied,
	StageScreening,
	StageInterview,
	StageOffer,
	StageHired,
	StageRejected,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

// forwardEdges maps each stage to its single forward successor. The forward
// path is strictly linear; skipping is illegal.
var forwardEdges = map[Stage]Stage{
	StageApplied:   StageScreening,
	StageScreening: StageInterview,
	StageInterview: StageOffer,
	StageOffer:     StageHired,
}

// Initial returns the stage every new application enters at creation.
func Initial() Stage {
	return StageApplied
}

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// Known reports whether the value is a member of the stage set.
func Known(stage Stage) bool {
	_, ok := stageSet[stage]
	return ok
}

// Terminal reports whether a stage has no outgoing transitions.
func Terminal(stage Stage) bool {
	return stage == StageHired || stage == StageRejected
}

// IsLegal reports whether to is a direct successor of from. Self-loops,
// backward moves, skips, and any move out of a terminal stage are illegal.
func IsLegal(from, to Stage) bool {
	if !Known(from) || !Known(to) {
		return false
	}
	if Terminal(from) {
		return false
	}
	if to == StageRejected {
		return true
	}
	return forwardEdges[from] == to
}

// SuccessorsOf returns the stages directly reachable from the given stage.
func SuccessorsOf(stage Stage) []Stage {
	if !Known(stage) || Terminal(stage) {
		return nil
	}
	successors := make([]Stage, 0, 2)
	if next, ok := forwardEdges[stage]; ok {
		successors = append(successors, next)
	}
	successors = append(successors, StageRejected)
	return successors
}
