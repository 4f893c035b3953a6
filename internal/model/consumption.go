package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConsumptionPolicy decides how a consumption request is spread over lots.
type ConsumptionPolicy string

const (
	// PolicySingleLot deducts only from the first FIFO lot, possibly less than requested.
	PolicySingleLot ConsumptionPolicy = "single_lot"
	// PolicySpillOver walks lots in FIFO order until the request is met or stock runs out.
	PolicySpillOver ConsumptionPolicy = "spill_over"
)

func ParseConsumptionPolicy(s string) (ConsumptionPolicy, error) {
	switch p := ConsumptionPolicy(s); p {
	case PolicySingleLot, PolicySpillOver:
		return p, nil
	}
	return "", fmt.Errorf("unknown consumption policy %q", s)
}

// Allocation is the share of a consumption taken from one lot.
type Allocation struct {
	LotID         string          `json:"lot_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	TransactionID string          `json:"transaction_id"`
}

type Deduction struct {
	Item             Item            `json:"item"`
	Lot              Lot             `json:"lot"` // first lot consumed from
	Requested        decimal.Decimal `json:"requested"`
	QuantityDeducted decimal.Decimal `json:"quantity_deducted"`
	Allocations      []Allocation    `json:"allocations"`
}

// Partial reports whether less than requested was deducted.
func (d *Deduction) Partial() bool {
	return d.QuantityDeducted.LessThan(d.Requested)
}
