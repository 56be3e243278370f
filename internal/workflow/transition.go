// Package workflow holds the mission lifecycle rules and the invoice
// finalization computation. Everything here runs before any network call:
// a rejection from this package means nothing was sent anywhere.
package workflow

import (
	"fmt"

	"tutelliv/pkg/types"
)

// ValidationError marks rejections raised ahead of any mutation, so
// callers can render them inline instead of as API failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CanTransition reports whether a mission status change is legal. The
// lifecycle is monotonic: pending -> in_progress -> delivered, no skips,
// no back-transitions. canceled is produced server-side only and is
// terminal, nothing moves in or out of it here.
func CanTransition(from, to types.MissionStatus) bool {
	switch from {
	case types.MissionStatusPending:
		return to == types.MissionStatusInProgress
	case types.MissionStatusInProgress:
		return to == types.MissionStatusDelivered
	default:
		return false
	}
}

// ValidateEdit gates category/comment changes: they are only allowed
// while the mission is still pending.
func ValidateEdit(mission *types.Mission) error {
	if mission.Status != types.MissionStatusPending {
		return validationErrorf("mission %s is %s, only pending missions can be edited", mission.ID, mission.Status)
	}
	return nil
}

// ValidateCategories enforces the non-empty, known-values invariant on a
// mission's category set.
func ValidateCategories(categories []types.MissionCategory) error {
	if len(categories) == 0 {
		return validationErrorf("at least one category is required")
	}
	for _, c := range categories {
		if !types.ValidCategory(c) {
			return validationErrorf("unknown category %q", c)
		}
	}
	return nil
}
