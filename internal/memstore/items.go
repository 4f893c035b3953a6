package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type ItemRepository struct {
	s *Store
}

func (r *ItemRepository) Create(ctx context.Context, it *model.Item) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.items[it.ID]; ok {
			return apperr.New(apperr.KindConflict, "item %s already exists", it.ID)
		}
		if err := r.checkUniqueName(it); err != nil {
			return err
		}
		r.s.items[it.ID] = *it
		return nil
	})
}

// checkUniqueName mirrors the unique index on live (tenant, category, name).
func (r *ItemRepository) checkUniqueName(it *model.Item) error {
	for _, other := range r.s.items {
		if other.ID != it.ID && other.DeletedAt == nil && other.TenantID == it.TenantID &&
			other.Category == it.Category && other.Name == it.Name {
			return apperr.InvalidInput("item %q already exists in category %s", it.Name, it.Category)
		}
	}
	return nil
}

func (r *ItemRepository) get(tenantID, id string) *model.Item {
	it, ok := r.s.items[id]
	if !ok || it.TenantID != tenantID || it.DeletedAt != nil {
		return nil
	}
	return &it
}

func (r *ItemRepository) FindByID(_ context.Context, tenantID, id string) (*model.Item, error) {
	var out *model.Item
	r.s.read(func() { out = r.get(tenantID, id) })
	return out, nil
}

func (r *ItemRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Item, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *ItemRepository) FindByName(_ context.Context, tenantID, name string, category *model.Category) (*model.Item, error) {
	var out *model.Item
	r.s.read(func() {
		for _, it := range r.s.items {
			if it.TenantID != tenantID || it.DeletedAt != nil || it.Name != name {
				continue
			}
			if category != nil && it.Category != *category {
				continue
			}
			if out == nil || it.CreatedAt.Before(out.CreatedAt) {
				match := it
				out = &match
			}
		}
	})
	return out, nil
}

func (r *ItemRepository) FindAll(_ context.Context, f *dto.ItemFilters) ([]model.Item, int, error) {
	var rows []model.Item
	search := strings.ToLower(f.SearchQuery)

	r.s.read(func() {
		for _, it := range r.s.items {
			switch {
			case it.DeletedAt != nil:
			case f.TenantID != "" && it.TenantID != f.TenantID:
			case f.Category != nil && it.Category != *f.Category:
			case f.LowStockOnly && !it.LowStock():
			case f.InStockOnly && !it.QuantityCurrent.IsPositive():
			case search != "" && !strings.Contains(strings.ToLower(it.Name), search):
			default:
				rows = append(rows, it)
			}
		}
	})

	slices.SortFunc(rows, func(a, b model.Item) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}

func (r *ItemRepository) Update(ctx context.Context, it *model.Item) error {
	return r.s.write(ctx, func() error {
		cur := r.get(it.TenantID, it.ID)
		if cur == nil {
			return apperr.New(apperr.KindConflict, "item was modified concurrently")
		}
		if err := r.checkUniqueName(it); err != nil {
			return err
		}
		next := *it
		next.QuantityCurrent = cur.QuantityCurrent
		next.DeletedAt = nil
		r.s.items[it.ID] = next
		return nil
	})
}

func (r *ItemRepository) UpdateQuantity(ctx context.Context, tenantID, id string, expected, next decimal.Decimal) error {
	return r.s.write(ctx, func() error {
		cur := r.get(tenantID, id)
		if cur == nil || !cur.QuantityCurrent.Equal(expected) {
			return apperr.New(apperr.KindConflict, "item quantity was modified concurrently")
		}
		if next.IsNegative() {
			return apperr.New(apperr.KindInsufficientStock, "item quantity would become negative")
		}
		cur.QuantityCurrent = next
		cur.UpdatedAt = time.Now()
		r.s.items[id] = *cur
		return nil
	})
}

func (r *ItemRepository) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	return r.s.write(ctx, func() error {
		cur := r.get(tenantID, id)
		if cur == nil {
			return apperr.New(apperr.KindConflict, "item was modified concurrently")
		}
		cur.DeletedAt = &at
		cur.IsActive = false
		cur.UpdatedAt = at
		r.s.items[id] = *cur
		return nil
	})
}

func (r *ItemRepository) ListTenants(_ context.Context) ([]string, error) {
	var tenants []string
	r.s.read(func() {
		for _, it := range r.s.items {
			if it.DeletedAt == nil {
				tenants = append(tenants, it.TenantID)
			}
		}
	})
	slices.Sort(tenants)
	return slices.Compact(tenants), nil
}
