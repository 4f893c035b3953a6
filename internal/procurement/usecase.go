package procurement

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error)
	Receive(ctx context.Context, input *dto.ReceiveInput) (*model.PurchaseOrder, error)
	Cancel(ctx context.Context, tenantID, orderID string) (*model.PurchaseOrder, error)
	OnTheWay(ctx context.Context, tenantID, itemID string) (*model.OnTheWay, error)
	GetOrder(ctx context.Context, tenantID, id string) (*model.PurchaseOrder, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error)
}
