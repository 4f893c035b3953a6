package model

import "github.com/shopspring/decimal"

// ItemStock is an item with its lots in FIFO order.
type ItemStock struct {
	Item Item  `json:"item"`
	Lots []Lot `json:"lots"`
}

// AuditFinding describes an item whose cached quantity disagrees with
// either the ledger history or the sum of its lots.
type AuditFinding struct {
	TenantID  string          `json:"tenant_id"`
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Cached    decimal.Decimal `json:"cached"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
	LotSum    decimal.Decimal `json:"lot_sum"`
}

func (f AuditFinding) LedgerDrift() bool { return !f.Cached.Equal(f.LedgerSum) }
func (f AuditFinding) LotDrift() bool    { return !f.Cached.Equal(f.LotSum) }

// LowStockEvent is published when an item drops below its reorder threshold.
type LowStockEvent struct {
	TenantID         string          `json:"tenant_id"`
	ItemID           string          `json:"item_id"`
	ItemName         string          `json:"item_name"`
	Category         Category        `json:"category"`
	QuantityCurrent  decimal.Decimal `json:"quantity_current"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	TransactionID    string          `json:"transaction_id"`
}
