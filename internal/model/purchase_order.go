package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOrdered           OrderStatus = "ordered"
	OrderStatusPartiallyReceived OrderStatus = "partially_received"
	OrderStatusReceived          OrderStatus = "received"
	OrderStatusCancelled         OrderStatus = "cancelled"
)

type PurchaseOrder struct {
	BaseModel
	TenantID           string              `db:"tenant_id" json:"tenant_id"`
	OrderNumber        string              `db:"order_number" json:"order_number"`
	Supplier           string              `db:"supplier" json:"supplier"`
	Status             OrderStatus         `db:"status" json:"status"`
	TotalItems         int                 `db:"total_items" json:"total_items"`
	ReceivedItems      int                 `db:"received_items" json:"received_items"`
	OrderedAt          time.Time           `db:"ordered_at" json:"ordered_at"`
	ExpectedDeliveryAt *time.Time          `db:"expected_delivery_at" json:"expected_delivery_at,omitempty"`
	ReceivedAt         *time.Time          `db:"received_at" json:"received_at,omitempty"`
	CancelledAt        *time.Time          `db:"cancelled_at" json:"cancelled_at,omitempty"`
	Note               string              `db:"note" json:"note"`
	CreatedBy          string              `db:"created_by" json:"created_by"`
	Lines              []PurchaseOrderLine `db:"-" json:"lines"`
}

type PurchaseOrderLine struct {
	ID               string          `db:"id" json:"id"`
	OrderID          string          `db:"order_id" json:"order_id"`
	TenantID         string          `db:"tenant_id" json:"tenant_id"`
	ItemID           string          `db:"item_id" json:"item_id"`
	QuantityOrdered  decimal.Decimal `db:"quantity_ordered" json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `db:"quantity_received" json:"quantity_received"`
	UnitPrice        decimal.Decimal `db:"unit_price" json:"unit_price"`
}

func (l *PurchaseOrderLine) Outstanding() decimal.Decimal {
	return l.QuantityOrdered.Sub(l.QuantityReceived)
}

func (l *PurchaseOrderLine) FullyReceived() bool {
	return l.QuantityReceived.GreaterThanOrEqual(l.QuantityOrdered)
}

// Line returns the order line with the given id, or nil.
func (o *PurchaseOrder) Line(id string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == id {
			return &o.Lines[i]
		}
	}
	return nil
}

// AnyReceived reports whether any line has received quantity.
func (o *PurchaseOrder) AnyReceived() bool {
	for _, l := range o.Lines {
		if l.QuantityReceived.IsPositive() {
			return true
		}
	}
	return false
}

// Reconcile recomputes the line counters and the status from the lines.
// Cancelled orders are left alone.
func (o *PurchaseOrder) Reconcile(now time.Time) {
	if o.Status == OrderStatusCancelled {
		return
	}
	o.TotalItems = len(o.Lines)
	o.ReceivedItems = 0
	for _, l := range o.Lines {
		if l.FullyReceived() {
			o.ReceivedItems++
		}
	}
	switch {
	case o.TotalItems > 0 && o.ReceivedItems == o.TotalItems:
		o.Status = OrderStatusReceived
		if o.ReceivedAt == nil {
			o.ReceivedAt = &now
		}
	case o.AnyReceived():
		o.Status = OrderStatusPartiallyReceived
	}
}

// OnTheWay is the outstanding ordered quantity of one item.
type OnTheWay struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   []OnTheWayOrder `json:"orders"`
}

type OnTheWayOrder struct {
	OrderID            string          `db:"order_id" json:"order_id"`
	OrderNumber        string          `db:"order_number" json:"order_number"`
	Supplier           string          `db:"supplier" json:"supplier"`
	Status             OrderStatus     `db:"status" json:"status"`
	ExpectedDeliveryAt *time.Time      `db:"expected_delivery_at" json:"expected_delivery_at,omitempty"`
	Outstanding        decimal.Decimal `db:"outstanding" json:"outstanding"`
}
