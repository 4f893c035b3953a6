package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type LotRepository struct {
	s *Store
}

func (r *LotRepository) Create(ctx context.Context, l *model.Lot) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.lots[l.ID]; ok {
			return apperr.New(apperr.KindConflict, "lot %s already exists", l.ID)
		}
		if _, ok := r.s.items[l.ItemID]; !ok {
			return apperr.NotFound("item", l.ItemID)
		}
		r.s.lots[l.ID] = *l
		return nil
	})
}

func (r *LotRepository) get(tenantID, id string) *model.Lot {
	l, ok := r.s.lots[id]
	if !ok || l.TenantID != tenantID {
		return nil
	}
	return &l
}

func (r *LotRepository) FindByID(_ context.Context, tenantID, id string) (*model.Lot, error) {
	var out *model.Lot
	r.s.read(func() { out = r.get(tenantID, id) })
	return out, nil
}

func (r *LotRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Lot, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *LotRepository) FindByNumber(_ context.Context, tenantID, itemID, lotNumber string) (*model.Lot, error) {
	var out *model.Lot
	r.s.read(func() {
		for _, l := range r.s.lots {
			if l.TenantID != tenantID || l.ItemID != itemID || l.LotNumber == nil || *l.LotNumber != lotNumber {
				continue
			}
			if out == nil || l.CreatedAt.Before(out.CreatedAt) {
				match := l
				out = &match
			}
		}
	})
	return out, nil
}

func (r *LotRepository) List(_ context.Context, f *dto.LotFilters) ([]model.Lot, error) {
	var rows []model.Lot
	r.s.read(func() {
		for _, l := range r.s.lots {
			switch {
			case l.TenantID != f.TenantID:
			case f.ItemID != "" && l.ItemID != f.ItemID:
			case f.InStockOnly && !l.HasStock():
			case f.ExpiresBefore != nil && (l.ExpiresAt == nil || !l.ExpiresAt.Before(*f.ExpiresBefore)):
			default:
				rows = append(rows, l)
			}
		}
	})

	slices.SortFunc(rows, func(a, b model.Lot) int {
		switch {
		case a.ExpiresBefore(&b):
			return -1
		case b.ExpiresBefore(&a):
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	return rows, nil
}

func (r *LotRepository) Update(ctx context.Context, l *model.Lot) error {
	return r.s.write(ctx, func() error {
		cur := r.get(l.TenantID, l.ID)
		if cur == nil {
			return apperr.New(apperr.KindConflict, "lot was modified concurrently")
		}
		cur.LotNumber = l.LotNumber
		cur.ExpiresAt = l.ExpiresAt
		cur.CostPerUnit = l.CostPerUnit
		cur.UpdatedAt = l.UpdatedAt
		r.s.lots[l.ID] = *cur
		return nil
	})
}

func (r *LotRepository) UpdateQuantity(ctx context.Context, tenantID, id string, expected, next decimal.Decimal) error {
	return r.s.write(ctx, func() error {
		cur := r.get(tenantID, id)
		if cur == nil || !cur.Quantity.Equal(expected) {
			return apperr.New(apperr.KindConflict, "lot quantity was modified concurrently")
		}
		if next.IsNegative() {
			return apperr.InvalidInput("lot quantity would become negative")
		}
		cur.Quantity = next
		cur.UpdatedAt = time.Now()
		r.s.lots[id] = *cur
		return nil
	})
}

func (r *LotRepository) HasStock(_ context.Context, tenantID, itemID string) (bool, error) {
	found := false
	r.s.read(func() {
		for _, l := range r.s.lots {
			if l.TenantID == tenantID && l.ItemID == itemID && l.HasStock() {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *LotRepository) SumByItem(_ context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	r.s.read(func() {
		for _, l := range r.s.lots {
			if l.TenantID == tenantID {
				sums[l.ItemID] = sums[l.ItemID].Add(l.Quantity)
			}
		}
	})
	return sums, nil
}
