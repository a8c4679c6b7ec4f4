// Package workflow defines the lifecycle of a threat-profiling run.
package workflow

import (
	"github.com/marcus/bastion/internal/models"
)

// Transition is one allowed state change and the guards it must pass.
type Transition struct {
	From   models.ProfileState
	To     models.ProfileState
	Guards []Guard
}

// AllTransitions returns all valid profile state transitions
func AllTransitions() []*Transition {
	progress := &ProgressGuard{}
	return []*Transition{
		// From queued
		{From: models.ProfileQueued, To: models.ProfileRunning, Guards: []Guard{progress}},
		{From: models.ProfileQueued, To: models.ProfileFailed},

		// From running
		{From: models.ProfileRunning, To: models.ProfileRunning, Guards: []Guard{progress}},
		{From: models.ProfileRunning, To: models.ProfileCompleted, Guards: []Guard{progress, &CompletionGuard{}}},
		{From: models.ProfileRunning, To: models.ProfileFailed},

		// Re-runs
		{From: models.ProfileCompleted, To: models.ProfileQueued},
		{From: models.ProfileFailed, To: models.ProfileQueued},
	}
}

// TransitionName returns a human-readable name for the transition
func TransitionName(from, to models.ProfileState) string {
	switch {
	case from == models.ProfileQueued && to == models.ProfileRunning:
		return "start"
	case from == models.ProfileRunning && to == models.ProfileRunning:
		return "progress"
	case to == models.ProfileCompleted:
		return "complete"
	case to == models.ProfileFailed:
		return "fail"
	case to == models.ProfileQueued:
		return "rerun"
	default:
		return string(from) + " → " + string(to)
	}
}

// GetTransitionsFrom returns all states reachable from the given state
func GetTransitionsFrom(state models.ProfileState) []models.ProfileState {
	var targets []models.ProfileState
	for _, t := range AllTransitions() {
		if t.From == state {
			targets = append(targets, t.To)
		}
	}
	return targets
}

// AllStates returns all profile states in lifecycle order
func AllStates() []models.ProfileState {
	return []models.ProfileState{
		models.ProfileQueued,
		models.ProfileRunning,
		models.ProfileCompleted,
		models.ProfileFailed,
	}
}

func find(from, to models.ProfileState) *Transition {
	for _, t := range AllTransitions() {
		if t.From == from && t.To == to {
			return t
		}
	}
	return nil
}

// CanTransition reports whether from → to is part of the lifecycle.
func CanTransition(from, to models.ProfileState) bool {
	return find(from, to) != nil
}

// Validate checks that a run may move from the from status to the to status.
// It returns a *TransitionError for a state change outside the lifecycle and
// a *GuardError for the first guard that vetoes it.
func Validate(from, to models.ThreatProfileStatus) error {
	t := find(from.Status, to.Status)
	if t == nil {
		return &TransitionError{
			From:       from.Status,
			To:         to.Status,
			Reason:     "not a valid " + TransitionName(from.Status, to.Status) + " step",
			ClientName: to.ClientName,
		}
	}
	ctx := &TransitionContext{From: from, To: to}
	for _, g := range t.Guards {
		if r := g.Check(ctx); !r.Passed {
			return &GuardError{GuardName: g.Name(), Reason: r.Message, ClientName: to.ClientName}
		}
	}
	return nil
}
