package dto

import (
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

// DeductInput identifies the item by ItemID, or by exact ItemName within Category.
type DeductInput struct {
	TenantID    string
	ItemID      string
	ItemName    string
	Category    *model.Category
	Amount      decimal.Decimal // already in the item's unit
	RelatedType *string
	RelatedID   *string
	ActorID     string
	Note        string
	// Policy overrides the configured default when set.
	Policy model.ConsumptionPolicy
}
