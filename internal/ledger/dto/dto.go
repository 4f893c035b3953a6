package dto

import "time"

type TransactionFilters struct {
	TenantID string
	ItemID   string
	// Since keeps transactions created at or after the given time.
	Since    *time.Time
	Page     int
	PageSize int
}
