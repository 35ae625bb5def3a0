// Package inventory contiene reglas de valoración de existencias.
package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una entrada, redondeado a 2 decimales:
//
//	((onHand * currentCost) + (inQty * inCost)) / (onHand + inQty)
//
// Si el total resultante no es positivo devuelve cero.
func WeightedAverageCost(onHand, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	total := onHand.Add(inQty)
	if !total.IsPositive() {
		return decimal.Zero
	}
	num := onHand.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(total).Round(2)
}
