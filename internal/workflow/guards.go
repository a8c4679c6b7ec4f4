package workflow

import "github.com/marcus/bastion/internal/models"

// GuardResult is the outcome of one guard check.
type GuardResult struct {
	Passed  bool
	Message string
}

// Guard vetoes a transition that is structurally allowed.
type Guard interface {
	Name() string
	Check(ctx *TransitionContext) GuardResult
}

// TransitionContext carries the run before and after the proposed step.
type TransitionContext struct {
	From models.ThreatProfileStatus
	To   models.ThreatProfileStatus
}

// ProgressGuard rejects progress that moves backwards or leaves 0..100.
type ProgressGuard struct{}

func (g *ProgressGuard) Name() string {
	return "ProgressGuard"
}

func (g *ProgressGuard) Check(ctx *TransitionContext) GuardResult {
	if ctx.To.Progress < 0 || ctx.To.Progress > 100 {
		return GuardResult{Message: "progress must be between 0 and 100"}
	}
	if ctx.To.Progress < ctx.From.Progress {
		return GuardResult{Message: "progress cannot decrease"}
	}
	return GuardResult{Passed: true}
}

// CompletionGuard only lets a run complete at 100%.
type CompletionGuard struct{}

func (g *CompletionGuard) Name() string {
	return "CompletionGuard"
}

func (g *CompletionGuard) Check(ctx *TransitionContext) GuardResult {
	if ctx.To.Progress != 100 {
		return GuardResult{Message: "a completed run must report 100% progress"}
	}
	return GuardResult{Passed: true}
}
