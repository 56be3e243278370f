package workflow

import (
	"errors"
	"strings"
	"testing"

	"tutelliv/pkg/types"
)

func TestParseFinalizationTotals(t *testing.T) {
	lines := map[types.MissionCategory]LineInput{
		types.CategoryFood:  {Amount: "12.50", Note: "two bags"},
		types.CategoryOther: {Amount: "7"},
	}

	fin, err := ParseFinalization(lines, "38", "left with caretaker")
	if err != nil {
		t.Fatalf("ParseFinalization: %v", err)
	}

	if fin.Amount != 57.50 {
		t.Errorf("Amount = %v, want 57.50", fin.Amount)
	}
	if fin.DeliveryFee != 38 {
		t.Errorf("DeliveryFee = %v, want 38", fin.DeliveryFee)
	}
	if got := fin.Lines[types.CategoryFood].Amount; got != 12.50 {
		t.Errorf("FOOD amount = %v, want 12.50", got)
	}
	if fin.Lines[types.CategoryOther].Note != nil {
		t.Error("OTHER note should be nil for blank input")
	}
	if fin.Note == nil || *fin.Note != "left with caretaker" {
		t.Errorf("Note = %v, want global note", fin.Note)
	}

	// deterministic under re-computation
	again, err := ParseFinalization(lines, "38", "left with caretaker")
	if err != nil {
		t.Fatalf("ParseFinalization (second run): %v", err)
	}
	if again.Amount != fin.Amount {
		t.Errorf("recomputed Amount = %v, want %v", again.Amount, fin.Amount)
	}
}

func TestParseFinalizationCommaDecimals(t *testing.T) {
	fin, err := ParseFinalization(map[types.MissionCategory]LineInput{
		types.CategoryHygiene: {Amount: "9,99"},
	}, "0,50", "")
	if err != nil {
		t.Fatalf("ParseFinalization: %v", err)
	}
	if fin.Amount != 10.49 {
		t.Errorf("Amount = %v, want 10.49", fin.Amount)
	}
}

func TestParseFinalizationRounding(t *testing.T) {
	fin, err := ParseFinalization(map[types.MissionCategory]LineInput{
		types.CategoryFood: {Amount: "0.555"},
	}, "0.555", "")
	if err != nil {
		t.Fatalf("ParseFinalization: %v", err)
	}
	// each amount normalized to 2 decimals before summing
	if got := fin.Lines[types.CategoryFood].Amount; got != 0.56 {
		t.Errorf("line amount = %v, want 0.56", got)
	}
	if fin.Amount != 1.12 {
		t.Errorf("Amount = %v, want 1.12", fin.Amount)
	}
}

func TestParseFinalizationRejectsBadAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"non-numeric", "abc"},
		{"negative", "-3"},
		{"empty", ""},
		{"mixed", "12.5x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFinalization(map[types.MissionCategory]LineInput{
				types.CategoryFood: {Amount: tt.amount},
			}, "38", "")
			if err == nil {
				t.Fatal("expected rejection")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !strings.Contains(err.Error(), "FOOD") {
				t.Errorf("error %q should name the offending category", err)
			}
		})
	}
}

func TestParseFinalizationRejectsBadFee(t *testing.T) {
	lines := map[types.MissionCategory]LineInput{
		types.CategoryFood: {Amount: "10"},
	}

	for _, fee := range []string{"-5", "free", ""} {
		_, err := ParseFinalization(lines, fee, "")
		if err == nil {
			t.Errorf("fee %q: expected rejection", fee)
			continue
		}
		if !strings.Contains(err.Error(), "delivery fee") {
			t.Errorf("fee %q: error %q should be fee-specific", fee, err)
		}
	}
}
