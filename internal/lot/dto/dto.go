package dto

import "time"

type LotFilters struct {
	TenantID string
	ItemID   string // empty lists every item of the tenant
	// InStockOnly keeps lots with quantity > 0.
	InStockOnly bool
	// ExpiresBefore keeps dated lots expiring strictly before the given time.
	ExpiresBefore *time.Time
}
