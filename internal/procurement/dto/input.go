package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderLineInput struct {
	ItemID          string
	QuantityOrdered decimal.Decimal
	UnitPrice       decimal.Decimal
}

type CreateOrderInput struct {
	TenantID           string
	Supplier           string
	Lines              []OrderLineInput
	ExpectedDeliveryAt *time.Time
	Note               string
	ActorID            string
}

type DeliveryInput struct {
	LineID    string
	Quantity  decimal.Decimal
	LotNumber *string
	ExpiresAt *time.Time
	// CostPerUnit defaults to the line's unit price for new lots.
	CostPerUnit *decimal.Decimal
}

type ReceiveInput struct {
	TenantID   string
	OrderID    string
	Deliveries []DeliveryInput
	ActorID    string
}
