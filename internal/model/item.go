package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	BaseModel
	TenantID         string           `db:"tenant_id" json:"tenant_id"`
	Name             string           `db:"name" json:"name"`
	Category         Category         `db:"category" json:"category"`
	Unit             string           `db:"unit" json:"unit"`
	ReorderThreshold decimal.Decimal  `db:"reorder_threshold" json:"reorder_threshold"`
	EnergyDensity    *decimal.Decimal `db:"energy_density" json:"energy_density,omitempty"` // kcal per unit, food only
	UnitPrice        *decimal.Decimal `db:"unit_price" json:"unit_price,omitempty"`
	QuantityCurrent  decimal.Decimal  `db:"quantity_current" json:"quantity_current"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	DeletedAt        *time.Time       `db:"deleted_at" json:"-"`
}

// LowStock reports whether the cached quantity is below the reorder threshold.
func (i *Item) LowStock() bool {
	return i.QuantityCurrent.LessThan(i.ReorderThreshold)
}
