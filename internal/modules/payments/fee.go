package payments

import "github.com/shopspring/decimal"

var feeRate = decimal.RequireFromString("0.15")

// AuthorizationFee computes the authorization fee: 15% of the device's
// declared price, rounded to 2 decimal places with ties going away from
// zero (333.33 -> 49.9995 -> 50.00).
func AuthorizationFee(price decimal.NullDecimal) (decimal.Decimal, error) {
	if !price.Valid {
		return decimal.Decimal{}, ErrPriceNotSet
	}
	if price.Decimal.IsNegative() {
		return decimal.Decimal{}, ErrNegativePrice
	}
	return price.Decimal.Mul(feeRate).Round(2), nil
}
