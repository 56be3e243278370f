package workflow

import (
	"errors"
	"testing"

	"tutelliv/pkg/types"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to types.MissionStatus
		want     bool
	}{
		{types.MissionStatusPending, types.MissionStatusInProgress, true},
		{types.MissionStatusInProgress, types.MissionStatusDelivered, true},

		// no skips
		{types.MissionStatusPending, types.MissionStatusDelivered, false},

		// no back-transitions
		{types.MissionStatusInProgress, types.MissionStatusPending, false},
		{types.MissionStatusDelivered, types.MissionStatusInProgress, false},
		{types.MissionStatusDelivered, types.MissionStatusPending, false},

		// terminal states stay terminal
		{types.MissionStatusDelivered, types.MissionStatusDelivered, false},
		{types.MissionStatusCanceled, types.MissionStatusInProgress, false},
		{types.MissionStatusCanceled, types.MissionStatusPending, false},

		// self-loops are not transitions
		{types.MissionStatusPending, types.MissionStatusPending, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidateEdit(t *testing.T) {
	for _, status := range []types.MissionStatus{
		types.MissionStatusInProgress,
		types.MissionStatusDelivered,
		types.MissionStatusCanceled,
	} {
		mission := &types.Mission{ID: "m-1", Status: status}
		err := ValidateEdit(mission)
		if err == nil {
			t.Errorf("ValidateEdit(status=%s): expected rejection", status)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("ValidateEdit(status=%s): expected ValidationError, got %T", status, err)
		}
	}

	if err := ValidateEdit(&types.Mission{ID: "m-1", Status: types.MissionStatusPending}); err != nil {
		t.Errorf("ValidateEdit(pending): unexpected error %v", err)
	}
}

func TestValidateCategories(t *testing.T) {
	if err := ValidateCategories(nil); err == nil {
		t.Error("expected empty category set to be rejected")
	}
	if err := ValidateCategories([]types.MissionCategory{"GROCERIES"}); err == nil {
		t.Error("expected unknown category to be rejected")
	}
	if err := ValidateCategories([]types.MissionCategory{types.CategoryFood, types.CategoryOther}); err != nil {
		t.Errorf("unexpected error for valid categories: %v", err)
	}
}
