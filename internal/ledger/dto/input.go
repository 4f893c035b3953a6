package dto

import (
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type RecordTransactionInput struct {
	TenantID string
	ItemID   string
	LotID    *string
	Reason   model.Reason
	// Quantity is a magnitude for IN and OUT reasons and a signed delta for ADJUST.
	Quantity    decimal.Decimal
	Note        string
	RelatedType *string
	RelatedID   *string
	ActorID     string
}
