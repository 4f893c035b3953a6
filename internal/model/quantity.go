package model

import "github.com/shopspring/decimal"

// QuantityScale is the number of decimal places persisted for quantities.
const QuantityScale = 4

// FitsScale reports whether q survives storage at QuantityScale without rounding.
func FitsScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}
