package workflow

import (
	"errors"
	"testing"

	"github.com/marcus/bastion/internal/models"
)

func status(state models.ProfileState, progress int) models.ThreatProfileStatus {
	return models.ThreatProfileStatus{ClientName: "acme", Status: state, Progress: progress}
}

func TestAllowedTransitions(t *testing.T) {
	tests := []struct {
		from, to models.ProfileState
		want     bool
	}{
		{models.ProfileQueued, models.ProfileRunning, true},
		{models.ProfileQueued, models.ProfileCompleted, false},
		{models.ProfileRunning, models.ProfileCompleted, true},
		{models.ProfileRunning, models.ProfileQueued, false},
		{models.ProfileCompleted, models.ProfileRunning, false},
		{models.ProfileCompleted, models.ProfileQueued, true},
		{models.ProfileFailed, models.ProfileQueued, true},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStatesOnlyRerun(t *testing.T) {
	for _, s := range AllStates() {
		if !s.IsTerminal() {
			continue
		}
		targets := GetTransitionsFrom(s)
		if len(targets) != 1 || targets[0] != models.ProfileQueued {
			t.Errorf("%s transitions = %v, want [queued]", s, targets)
		}
	}
}

func TestValidateRejectsUnknownStep(t *testing.T) {
	err := Validate(status(models.ProfileQueued, 0), status(models.ProfileCompleted, 100))
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransitionError", err)
	}
	if te.ClientName != "acme" {
		t.Errorf("ClientName = %q", te.ClientName)
	}
}

func TestProgressGuard(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		pass     bool
	}{
		{"advance", 20, 40, true},
		{"same", 40, 40, true},
		{"backwards", 40, 20, false},
		{"overflow", 90, 120, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(status(models.ProfileRunning, tt.from), status(models.ProfileRunning, tt.to))
			if (err == nil) != tt.pass {
				t.Errorf("Validate = %v, want pass=%v", err, tt.pass)
			}
			var ge *GuardError
			if err != nil && (!errors.As(err, &ge) || ge.GuardName != "ProgressGuard") {
				t.Errorf("err = %v, want ProgressGuard failure", err)
			}
		})
	}
}

func TestCompletionNeedsFullProgress(t *testing.T) {
	if err := Validate(status(models.ProfileRunning, 80), status(models.ProfileCompleted, 90)); err == nil {
		t.Error("completion at 90% should be rejected")
	}
	if err := Validate(status(models.ProfileRunning, 80), status(models.ProfileCompleted, 100)); err != nil {
		t.Errorf("completion at 100%%: %v", err)
	}
}

func TestTransitionName(t *testing.T) {
	if got := TransitionName(models.ProfileFailed, models.ProfileQueued); got != "rerun" {
		t.Errorf("TransitionName = %q", got)
	}
}
