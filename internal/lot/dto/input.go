package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateLotInput struct {
	TenantID    string
	ItemID      string
	LotNumber   *string
	ExpiresAt   *time.Time
	CostPerUnit *decimal.Decimal
}

// UpdateLotInput changes lot metadata. Nil fields are left untouched.
type UpdateLotInput struct {
	ID          string
	TenantID    string
	LotNumber   *string
	ExpiresAt   *time.Time
	CostPerUnit *decimal.Decimal
}

// OpenLotInput creates a lot and posts its opening balance.
type OpenLotInput struct {
	CreateLotInput
	Quantity decimal.Decimal
	Note     string
	ActorID  string
}
