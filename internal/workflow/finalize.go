package workflow

import (
	"strings"

	"tutelliv/pkg/types"

	"github.com/shopspring/decimal"
)

// LineInput is a raw per-category invoice line as entered by the courier:
// amounts arrive as strings straight from the form.
type LineInput struct {
	Amount string
	Note   string
}

// Finalization is the validated, fully computed invoice detail sent along
// with a delivery. Build one with ParseFinalization; a zero value is never
// valid.
type Finalization struct {
	Lines       map[types.MissionCategory]types.InvoiceLine
	DeliveryFee float64
	Amount      float64
	Note        *string
}

// parseAmount accepts both "12.50" and "12,50", rejects anything that is
// not a finite non-negative number, and normalizes to 2 decimal places.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if cleaned == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if d.Sign() < 0 {
		return decimal.Zero, false
	}

	return d.Round(2), true
}

// ParseFinalization validates every category amount and the delivery fee
// before anything is mutated. The grand total is the rounded sum of line
// amounts plus the fee, and is deterministic for a given input.
func ParseFinalization(lines map[types.MissionCategory]LineInput, deliveryFee, note string) (*Finalization, error) {
	parsed := make(map[types.MissionCategory]types.InvoiceLine, len(lines))

	sum := decimal.Zero
	for category, line := range lines {
		amount, ok := parseAmount(line.Amount)
		if !ok {
			return nil, validationErrorf("amount for %s must be a non-negative number", category)
		}

		item := types.InvoiceLine{Amount: amount.InexactFloat64()}
		if n := strings.TrimSpace(line.Note); n != "" {
			item.Note = &n
		}

		parsed[category] = item
		sum = sum.Add(amount)
	}

	fee, ok := parseAmount(deliveryFee)
	if !ok {
		return nil, validationErrorf("delivery fee must be a non-negative number")
	}

	out := &Finalization{
		Lines:       parsed,
		DeliveryFee: fee.InexactFloat64(),
		Amount:      sum.Add(fee).Round(2).InexactFloat64(),
	}
	if n := strings.TrimSpace(note); n != "" {
		out.Note = &n
	}

	return out, nil
}
