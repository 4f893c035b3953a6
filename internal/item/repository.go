package item

import (
	"context"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

// Repository lookups return (nil, nil) when the item does not exist or is deleted.
type Repository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, tenantID, id string) (*model.Item, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Item, error)
	FindByName(ctx context.Context, tenantID, name string, category *model.Category) (*model.Item, error)
	FindAll(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error)
	Update(ctx context.Context, item *model.Item) error
	SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error
	ListTenants(ctx context.Context) ([]string, error)

	// UpdateQuantity writes quantity_current only if it still equals expected.
	// Reserved for the ledger.
	UpdateQuantity(ctx context.Context, tenantID, id string, expected, next decimal.Decimal) error
}
