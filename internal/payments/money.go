package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var minorPerMajor = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount (cedis) to minor units
// (pesewas) using decimal arithmetic. Amounts finer than one pesewa are
// rejected rather than rounded.
func ToMinorUnits(major decimal.Decimal) (int64, error) {
	if major.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, major)
	}
	minor := major.Mul(minorPerMajor)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than two decimal places", ErrInvalidAmount, major)
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts pesewas back to cedis exactly.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
