package normalizer

import (
	"errors"

	"github.com/shopspring/decimal"

	"MomentumScanner/internal/model"
)

var (
	hundred = decimal.NewFromInt(100)

	errZeroReference = errors.New("reference value is zero")
)

// PercentChange returns (current - reference) / reference * 100.
func PercentChange(current, reference decimal.Decimal) (decimal.Decimal, error) {
	if reference.IsZero() {
		return decimal.Zero, errZeroReference
	}
	return current.Sub(reference).Div(reference).Mul(hundred), nil
}

// PremarketChange derives the move from the pre-market close to the current price.
// An absent or zero pre-market close yields the unavailable sentinel.
func PremarketChange(price decimal.Decimal, premarketClose decimal.Decimal, present bool) model.SignedPercent {
	if !present {
		return model.Unavailable()
	}
	pct, err := PercentChange(price, premarketClose)
	if err != nil {
		return model.Unavailable()
	}
	return model.NewSignedPercent(pct)
}
