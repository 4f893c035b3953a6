package dto

import "github.com/fekuna/shelter-inventory-service/internal/model"

type ItemFilters struct {
	TenantID     string
	Category     *model.Category
	LowStockOnly bool   // quantity_current < reorder_threshold
	InStockOnly  bool   // quantity_current > 0
	SearchQuery  string // name search
	Page         int
	PageSize     int
}
