package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FillPercentage devuelve quantity / maxQuantity * 100 redondeado a 2 decimales.
// Con maxQuantity <= 0 no hay referencia y devuelve cero.
func FillPercentage(quantity, maxQuantity int) decimal.Decimal {
	if maxQuantity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(quantity)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(maxQuantity))).
		Round(2)
}

// SuggestedOrder es la cantidad que lleva el stock hasta el máximo (nunca negativa).
func SuggestedOrder(quantity, maxQuantity int) int {
	if quantity >= maxQuantity {
		return 0
	}
	return maxQuantity - quantity
}
