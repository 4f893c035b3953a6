package dto

import (
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type CreateItemInput struct {
	TenantID         string
	Name             string
	Category         model.Category
	Unit             string
	ReorderThreshold decimal.Decimal
	EnergyDensity    *decimal.Decimal
	UnitPrice        *decimal.Decimal
}

// UpdateItemInput carries a partial update; nil fields are left unchanged.
type UpdateItemInput struct {
	ID               string
	TenantID         string
	Name             *string
	Category         *model.Category
	Unit             *string
	ReorderThreshold *decimal.Decimal
	EnergyDensity    *decimal.Decimal
	UnitPrice        *decimal.Decimal
	IsActive         *bool
}
