// Package fee computes withdrawal processing fees.
package fee

import (
	"fmt"

	"survey-payout-be/internal/entity"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the split of a withdrawal amount.
type Breakdown struct {
	Amount decimal.Decimal
	Fee    decimal.Decimal
	Net    decimal.Decimal
}

// Compute returns the fee and net amount for a withdrawal. Percentage fees
// are rounded to cents, half up. The net amount must stay positive.
func Compute(feeType entity.FeeType, feeValue, amount decimal.Decimal) (Breakdown, error) {
	amount = amount.Round(2)

	var f decimal.Decimal
	switch feeType {
	case entity.FeeTypeNone, "":
		f = decimal.Zero
	case entity.FeeTypeFixed:
		f = feeValue.Round(2)
	case entity.FeeTypePercentage:
		f = amount.Mul(feeValue).Div(hundred).Round(2)
	default:
		return Breakdown{}, fmt.Errorf("unknown fee type %q", feeType)
	}

	if f.IsNegative() {
		return Breakdown{}, fmt.Errorf("negative fee value %s", feeValue)
	}
	if f.GreaterThanOrEqual(amount) {
		return Breakdown{}, entity.ErrFeeExceedsAmount
	}

	return Breakdown{Amount: amount, Fee: f, Net: amount.Sub(f)}, nil
}
