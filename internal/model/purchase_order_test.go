package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func line(ordered, received int64) PurchaseOrderLine {
	return PurchaseOrderLine{
		QuantityOrdered:  decimal.NewFromInt(ordered),
		QuantityReceived: decimal.NewFromInt(received),
	}
}

func TestPurchaseOrder_Reconcile(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		lines    []PurchaseOrderLine
		want     OrderStatus
		received int
	}{
		{"nothing received", []PurchaseOrderLine{line(10, 0), line(5, 0)}, OrderStatusOrdered, 0},
		{"one line partial", []PurchaseOrderLine{line(10, 3), line(5, 0)}, OrderStatusPartiallyReceived, 0},
		{"one line complete", []PurchaseOrderLine{line(10, 10), line(5, 0)}, OrderStatusPartiallyReceived, 1},
		{"all complete", []PurchaseOrderLine{line(10, 10), line(5, 5)}, OrderStatusReceived, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &PurchaseOrder{Status: OrderStatusOrdered, Lines: tt.lines}
			o.Reconcile(now)
			if o.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, o.Status)
			}
			if o.ReceivedItems != tt.received {
				t.Errorf("expected %d received lines, got %d", tt.received, o.ReceivedItems)
			}
			if o.TotalItems != len(tt.lines) {
				t.Errorf("expected %d total lines, got %d", len(tt.lines), o.TotalItems)
			}
			if (o.Status == OrderStatusReceived) != (o.ReceivedAt != nil) {
				t.Error("received_at should be set exactly when the order is received")
			}
		})
	}
}

func TestPurchaseOrder_ReconcileKeepsCancelled(t *testing.T) {
	o := &PurchaseOrder{Status: OrderStatusCancelled, Lines: []PurchaseOrderLine{line(1, 0)}}
	o.Reconcile(time.Now())
	if o.Status != OrderStatusCancelled {
		t.Errorf("expected cancelled, got %q", o.Status)
	}
}

func TestLot_ExpiresBefore(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	early := t0.AddDate(0, 1, 0)
	late := t0.AddDate(0, 3, 0)

	a := &Lot{ExpiresAt: &early, BaseModel: BaseModel{CreatedAt: t0.Add(time.Hour)}}
	b := &Lot{ExpiresAt: &late, BaseModel: BaseModel{CreatedAt: t0}}
	undated := &Lot{BaseModel: BaseModel{CreatedAt: t0}}

	if !a.ExpiresBefore(b) || b.ExpiresBefore(a) {
		t.Error("earlier expiry should sort first")
	}
	if !b.ExpiresBefore(undated) || undated.ExpiresBefore(b) {
		t.Error("undated lots should sort last")
	}
}
