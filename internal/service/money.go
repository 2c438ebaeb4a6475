package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// roundMoney rounds to cents, half away from zero.
func roundMoney(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// percentOf returns part/whole*100 rounded to two places, or 0 when whole is not positive.
func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return roundMoney(part.Div(whole).Mul(hundred))
}
