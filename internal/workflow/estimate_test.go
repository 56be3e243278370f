package workflow

import (
	"errors"
	"testing"
)

func TestComputeEstimate(t *testing.T) {
	cases := []struct {
		name  string
		items []EstimateItem
		want  Estimate
	}{
		{
			name: "two lines",
			items: []EstimateItem{
				{Name: "Pâtes", Quantity: 2, UnitPrice: 10},
				{Name: "Lait", Quantity: 1, UnitPrice: 3.5},
			},
			want: Estimate{Subtotal: 23.5, Margin: 2.35, DeliveryFee: 5, TVA: 6.17, Total: 37.02},
		},
		{
			name:  "empty list still carries the fee",
			items: nil,
			want:  Estimate{Subtotal: 0, Margin: 0, DeliveryFee: 5, TVA: 1, Total: 6},
		},
		{
			name:  "rounds on output not between steps",
			items: []EstimateItem{{Name: "Vrac", Quantity: 1, UnitPrice: 0.333}},
			want:  Estimate{Subtotal: 0.33, Margin: 0.03, DeliveryFee: 5, TVA: 1.07, Total: 6.44},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeEstimate(tc.items)
			if err != nil {
				t.Fatalf("ComputeEstimate: %v", err)
			}
			if *got != tc.want {
				t.Errorf("ComputeEstimate = %+v, want %+v", *got, tc.want)
			}

			// deterministic under recomputation
			again, err := ComputeEstimate(tc.items)
			if err != nil {
				t.Fatalf("ComputeEstimate (again): %v", err)
			}
			if *again != *got {
				t.Errorf("recomputation diverged: %+v vs %+v", *again, *got)
			}
		})
	}
}

func TestComputeEstimateRejectsNegatives(t *testing.T) {
	cases := []struct {
		name  string
		items []EstimateItem
	}{
		{"negative quantity", []EstimateItem{{Name: "Pain", Quantity: -1, UnitPrice: 2}}},
		{"negative price", []EstimateItem{{Name: "Pain", Quantity: 1, UnitPrice: -2}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeEstimate(tc.items)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}
