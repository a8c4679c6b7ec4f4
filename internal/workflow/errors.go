package workflow

import (
	"fmt"

	"github.com/marcus/bastion/internal/models"
)

// TransitionError represents an error when a transition is not allowed
type TransitionError struct {
	From       models.ProfileState
	To         models.ProfileState
	Reason     string
	ClientName string
}

func (e *TransitionError) Error() string {
	if e.ClientName != "" {
		return fmt.Sprintf("cannot move profile of %s from %s to %s: %s", e.ClientName, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot move profile from %s to %s: %s", e.From, e.To, e.Reason)
}

// GuardError represents an error when a guard check fails
type GuardError struct {
	GuardName  string
	Reason     string
	ClientName string
}

func (e *GuardError) Error() string {
	if e.ClientName != "" {
		return fmt.Sprintf("guard %s failed for %s: %s", e.GuardName, e.ClientName, e.Reason)
	}
	return fmt.Sprintf("guard %s failed: %s", e.GuardName, e.Reason)
}
