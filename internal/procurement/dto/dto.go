package dto

import "github.com/fekuna/shelter-inventory-service/internal/model"

type OrderFilters struct {
	TenantID string
	Status   *model.OrderStatus
	Supplier string // case-insensitive substring
	Page     int
	PageSize int
}
