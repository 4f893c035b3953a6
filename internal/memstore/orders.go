package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement/dto"
	"github.com/shopspring/decimal"
)

type PurchaseOrderRepository struct {
	s *Store
}

func (r *PurchaseOrderRepository) NextSequence(ctx context.Context, tenantID string, year int) (int, error) {
	var next int
	err := r.s.write(ctx, func() error {
		key := seqKey{tenantID: tenantID, year: year}
		r.s.sequences[key]++
		next = r.s.sequences[key]
		return nil
	})
	return next, err
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, o *model.PurchaseOrder) error {
	return r.s.write(ctx, func() error {
		for _, existing := range r.s.orders {
			if existing.TenantID == o.TenantID && existing.OrderNumber == o.OrderNumber {
				return apperr.New(apperr.KindConflict, "order number %s already used", o.OrderNumber)
			}
		}
		for _, l := range o.Lines {
			if l.QuantityReceived.GreaterThan(l.QuantityOrdered) {
				return apperr.New(apperr.KindOverReceipt, "line %s received exceeds ordered", l.ID)
			}
		}
		r.s.orders[o.ID] = cloneOrder(*o)
		return nil
	})
}

func (r *PurchaseOrderRepository) get(tenantID, id string) *model.PurchaseOrder {
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil
	}
	o = cloneOrder(o)
	return &o
}

func (r *PurchaseOrderRepository) FindByID(_ context.Context, tenantID, id string) (*model.PurchaseOrder, error) {
	var out *model.PurchaseOrder
	r.s.read(func() { out = r.get(tenantID, id) })
	return out, nil
}

func (r *PurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.PurchaseOrder, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *PurchaseOrderRepository) FindAll(_ context.Context, f *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	var rows []model.PurchaseOrder
	supplier := strings.ToLower(f.Supplier)

	r.s.read(func() {
		for _, o := range r.s.orders {
			switch {
			case o.TenantID != f.TenantID:
			case f.Status != nil && o.Status != *f.Status:
			case supplier != "" && !strings.Contains(strings.ToLower(o.Supplier), supplier):
			default:
				rows = append(rows, cloneOrder(o))
			}
		}
	})

	slices.SortFunc(rows, func(a, b model.PurchaseOrder) int {
		if c := b.OrderedAt.Compare(a.OrderedAt); c != 0 {
			return c
		}
		return strings.Compare(b.OrderNumber, a.OrderNumber)
	})
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, o *model.PurchaseOrder) error {
	return r.s.write(ctx, func() error {
		cur := r.get(o.TenantID, o.ID)
		if cur == nil {
			return apperr.New(apperr.KindConflict, "purchase order was modified concurrently")
		}
		cur.Status = o.Status
		cur.TotalItems = o.TotalItems
		cur.ReceivedItems = o.ReceivedItems
		cur.ReceivedAt = o.ReceivedAt
		cur.CancelledAt = o.CancelledAt
		cur.UpdatedAt = o.UpdatedAt
		r.s.orders[o.ID] = *cur
		return nil
	})
}

func (r *PurchaseOrderRepository) UpdateLineReceived(ctx context.Context, tenantID, lineID string, expected, next decimal.Decimal) error {
	return r.s.write(ctx, func() error {
		for id, o := range r.s.orders {
			if o.TenantID != tenantID {
				continue
			}
			for i := range o.Lines {
				l := &o.Lines[i]
				if l.ID != lineID {
					continue
				}
				if !l.QuantityReceived.Equal(expected) {
					return apperr.New(apperr.KindConflict, "purchase order line was modified concurrently")
				}
				if next.GreaterThan(l.QuantityOrdered) || next.IsNegative() {
					return apperr.New(apperr.KindOverReceipt, "line %s received would exceed ordered", lineID)
				}
				o = cloneOrder(o)
				o.Lines[i].QuantityReceived = next
				r.s.orders[id] = o
				return nil
			}
		}
		return apperr.New(apperr.KindConflict, "purchase order line was modified concurrently")
	})
}

func (r *PurchaseOrderRepository) ListOutstanding(_ context.Context, tenantID, itemID string) ([]model.OnTheWayOrder, error) {
	var orders []model.PurchaseOrder
	r.s.read(func() {
		for _, o := range r.s.orders {
			if o.TenantID == tenantID && o.Status != model.OrderStatusCancelled {
				orders = append(orders, cloneOrder(o))
			}
		}
	})
	slices.SortFunc(orders, func(a, b model.PurchaseOrder) int {
		return a.OrderedAt.Compare(b.OrderedAt)
	})

	var out []model.OnTheWayOrder
	for _, o := range orders {
		outstanding := decimal.Zero
		for _, l := range o.Lines {
			if l.ItemID == itemID {
				outstanding = outstanding.Add(l.Outstanding())
			}
		}
		if outstanding.IsPositive() {
			out = append(out, model.OnTheWayOrder{
				OrderID:            o.ID,
				OrderNumber:        o.OrderNumber,
				Supplier:           o.Supplier,
				Status:             o.Status,
				ExpectedDeliveryAt: o.ExpectedDeliveryAt,
				Outstanding:        outstanding,
			})
		}
	}
	return out, nil
}
