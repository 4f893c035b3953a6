package dto

type HistoryFilters struct {
	TenantID string
	ItemID   string
	// Days limits history to the last N days. Zero means no limit.
	Days     int
	Page     int
	PageSize int
}
