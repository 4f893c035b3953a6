package procurement

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement/dto"
	"github.com/shopspring/decimal"
)

// Repository lookups return (nil, nil) when the order does not exist for the tenant.
// Orders are returned with their lines.
type Repository interface {
	// NextSequence increments and returns the tenant's order counter for year.
	NextSequence(ctx context.Context, tenantID string, year int) (int, error)
	Create(ctx context.Context, order *model.PurchaseOrder) error
	FindByID(ctx context.Context, tenantID, id string) (*model.PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.PurchaseOrder, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error)
	// Update writes status, counters and timestamps.
	Update(ctx context.Context, order *model.PurchaseOrder) error
	// UpdateLineReceived writes quantity_received only if it still equals expected.
	UpdateLineReceived(ctx context.Context, tenantID, lineID string, expected, next decimal.Decimal) error
	// ListOutstanding returns, per non-cancelled order, what is still due for the item.
	ListOutstanding(ctx context.Context, tenantID, itemID string) ([]model.OnTheWayOrder, error)
}
