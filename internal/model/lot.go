package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is one received batch of an item. Quantity is written only by the ledger.
type Lot struct {
	BaseModel
	TenantID    string           `db:"tenant_id" json:"tenant_id"`
	ItemID      string           `db:"item_id" json:"item_id"`
	LotNumber   *string          `db:"lot_number" json:"lot_number,omitempty"`
	ExpiresAt   *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
	Quantity    decimal.Decimal  `db:"quantity" json:"quantity"`
	CostPerUnit *decimal.Decimal `db:"cost_per_unit" json:"cost_per_unit,omitempty"`
}

func (l *Lot) HasStock() bool {
	return l.Quantity.IsPositive()
}

// ExpiresBefore orders lots by expiry ascending with undated lots last.
// Lots with equal expiry fall back to creation order.
func (l *Lot) ExpiresBefore(other *Lot) bool {
	switch {
	case l.ExpiresAt == nil && other.ExpiresAt == nil:
		return l.CreatedAt.Before(other.CreatedAt)
	case l.ExpiresAt == nil:
		return false
	case other.ExpiresAt == nil:
		return true
	case l.ExpiresAt.Equal(*other.ExpiresAt):
		return l.CreatedAt.Before(other.CreatedAt)
	}
	return l.ExpiresAt.Before(*other.ExpiresAt)
}
