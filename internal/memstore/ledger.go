package memstore

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	s *Store
}

func (r *LedgerRepository) Insert(ctx context.Context, t *model.Transaction) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.items[t.ItemID]; !ok {
			return apperr.NotFound("item", t.ItemID)
		}
		r.s.txs = append(r.s.txs, *t)
		return nil
	})
}

// FindAll returns matches newest first, using insertion order for equal timestamps.
func (r *LedgerRepository) FindAll(_ context.Context, f *dto.TransactionFilters) ([]model.Transaction, int, error) {
	var rows []model.Transaction
	r.s.read(func() {
		for i := len(r.s.txs) - 1; i >= 0; i-- {
			t := r.s.txs[i]
			switch {
			case t.TenantID != f.TenantID:
			case f.ItemID != "" && t.ItemID != f.ItemID:
			case f.Since != nil && t.CreatedAt.Before(*f.Since):
			default:
				rows = append(rows, t)
			}
		}
	})
	return paginate(rows, f.Page, f.PageSize), len(rows), nil
}

func (r *LedgerRepository) SumByItem(_ context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	r.s.read(func() {
		for _, t := range r.s.txs {
			if t.TenantID == tenantID {
				sums[t.ItemID] = sums[t.ItemID].Add(t.Quantity)
			}
		}
	})
	return sums, nil
}
