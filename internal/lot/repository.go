package lot

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

// Repository lookups return (nil, nil) when the lot does not exist for the tenant.
type Repository interface {
	Create(ctx context.Context, lot *model.Lot) error
	FindByID(ctx context.Context, tenantID, id string) (*model.Lot, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Lot, error)
	// FindByNumber returns the oldest lot of the item carrying lotNumber.
	FindByNumber(ctx context.Context, tenantID, itemID, lotNumber string) (*model.Lot, error)
	// List returns lots ordered by expiry ascending, undated lots last, ties by creation.
	List(ctx context.Context, filters *dto.LotFilters) ([]model.Lot, error)
	Update(ctx context.Context, lot *model.Lot) error
	HasStock(ctx context.Context, tenantID, itemID string) (bool, error)
	SumByItem(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error)

	// UpdateQuantity writes quantity only if it still equals expected.
	// Reserved for the ledger.
	UpdateQuantity(ctx context.Context, tenantID, id string, expected, next decimal.Decimal) error
}
