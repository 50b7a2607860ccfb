// Package units converts between display ounces and stored microliters.
package units

import "github.com/shopspring/decimal"

// 1 US fluid ounce = 29.5735 ml = 29573.5 microliters.
var microlitersPerOunce = decimal.RequireFromString("29573.5")

// OuncesToMicroliters converts fluid ounces to integer microliters,
// rounding half-up to the nearest microliter.
func OuncesToMicroliters(ounces decimal.Decimal) int64 {
	return ounces.Mul(microlitersPerOunce).Round(0).IntPart()
}

// MicrolitersToOunces converts microliters to fluid ounces rounded
// half-up to two decimal places. Values produced by OuncesToMicroliters
// from a two-decimal ounce amount round-trip exactly.
func MicrolitersToOunces(microliters int64) decimal.Decimal {
	return decimal.NewFromInt(microliters).Div(microlitersPerOunce).Round(2)
}
