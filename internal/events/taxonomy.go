// Package events defines the taxonomy of the local activity log.
//
// The taxonomy provides:
//   - Canonical entity and action types
//   - Normalization of singular/plural entity names
//   - Mapping of console and CLI action names to canonical actions
//   - Validation of entity+action combinations
//
// Entity names are accepted in singular or plural form: 'org' and 'orgs'
// both normalize to EntityOrgs. Action names recorded by the console and
// the CLI map onto the canonical set:
//   - 'create-le' → 'create'
//   - 'profile', 'threat-profile' → 'run'
//   - 'upgrade' → 'checkout'
package events

import (
	"fmt"
	"strings"
)

// EntityType represents the canonical entity types of the activity log.
type EntityType string

// ActionType represents the canonical action types of the activity log.
type ActionType string

// Canonical entity types
const (
	EntityOrgs        EntityType = "orgs"
	EntityAssessments EntityType = "assessments"
	EntityProfiles    EntityType = "profiles"
	EntitySessions    EntityType = "sessions"
)

// Canonical action types
const (
	ActionCreate   ActionType = "create"
	ActionUpdate   ActionType = "update"
	ActionDelete   ActionType = "delete"
	ActionSwitch   ActionType = "switch"
	ActionRun      ActionType = "run"
	ActionCheckout ActionType = "checkout"
	ActionLogin    ActionType = "login"
	ActionLogout   ActionType = "logout"
)

// NormalizeEntityType normalizes an entity type string to its canonical form.
func NormalizeEntityType(entityType string) (EntityType, bool) {
	switch strings.ToLower(strings.TrimSpace(entityType)) {
	case "org", "orgs", "organization", "organizations":
		return EntityOrgs, true
	case "assessment", "assessments":
		return EntityAssessments, true
	case "profile", "profiles", "threat-profile":
		return EntityProfiles, true
	case "session", "sessions":
		return EntitySessions, true
	default:
		return "", false
	}
}

// NormalizeActionType maps a recorded action name to its canonical form.
func NormalizeActionType(action string) (ActionType, bool) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "create", "create-le":
		return ActionCreate, true
	case "update":
		return ActionUpdate, true
	case "delete":
		return ActionDelete, true
	case "switch":
		return ActionSwitch, true
	case "run", "profile", "threat-profile":
		return ActionRun, true
	case "checkout", "upgrade":
		return ActionCheckout, true
	case "login":
		return ActionLogin, true
	case "logout":
		return ActionLogout, true
	default:
		return "", false
	}
}

// validActions lists the actions each entity supports.
var validActions = map[EntityType]map[ActionType]bool{
	EntityOrgs: {
		ActionCreate:   true,
		ActionUpdate:   true,
		ActionDelete:   true,
		ActionSwitch:   true,
		ActionRun:      true,
		ActionCheckout: true,
	},
	EntityAssessments: {ActionCreate: true},
	EntityProfiles:    {ActionRun: true},
	EntitySessions:    {ActionLogin: true, ActionLogout: true},
}

// IsValidCombination reports whether the canonical entity supports the
// canonical action.
func IsValidCombination(entity EntityType, action ActionType) bool {
	return validActions[entity][action]
}

// Validate normalizes entity and action and checks they form a supported
// combination.
func Validate(entity, action string) error {
	et, ok := NormalizeEntityType(entity)
	if !ok {
		return fmt.Errorf("unknown activity entity %q", entity)
	}
	at, ok := NormalizeActionType(action)
	if !ok {
		return fmt.Errorf("unknown activity action %q", action)
	}
	if !IsValidCombination(et, at) {
		return fmt.Errorf("action %q is not valid for %s", action, et)
	}
	return nil
}
