package workflow

import (
	"github.com/shopspring/decimal"
)

// Estimation pricing: a 10% margin on the goods, a flat delivery fee,
// and 20% TVA on everything.
var (
	estimateMarginRate = decimal.NewFromFloat(0.1)
	estimateTVARate    = decimal.NewFromFloat(0.2)
	estimateFee        = decimal.NewFromInt(5)
)

// EstimateItem is one priced line of a shopping list.
type EstimateItem struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// Estimate is the cost breakdown for a shopping list, every figure
// rounded to 2 decimals.
type Estimate struct {
	Subtotal    float64
	Margin      float64
	DeliveryFee float64
	TVA         float64
	Total       float64
}

// ComputeEstimate prices a shopping list. Deterministic for a given
// input; an empty list still carries the delivery fee and its TVA.
func ComputeEstimate(items []EstimateItem) (*Estimate, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, validationErrorf("quantity for %s must not be negative", item.Name)
		}
		price := decimal.NewFromFloat(item.UnitPrice)
		if price.Sign() < 0 {
			return nil, validationErrorf("unit price for %s must not be negative", item.Name)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	margin := subtotal.Mul(estimateMarginRate)
	tva := subtotal.Add(margin).Add(estimateFee).Mul(estimateTVARate)
	total := subtotal.Add(margin).Add(estimateFee).Add(tva)

	return &Estimate{
		Subtotal:    subtotal.Round(2).InexactFloat64(),
		Margin:      margin.Round(2).InexactFloat64(),
		DeliveryFee: estimateFee.Round(2).InexactFloat64(),
		TVA:         tva.Round(2).InexactFloat64(),
		Total:       total.Round(2).InexactFloat64(),
	}, nil
}
