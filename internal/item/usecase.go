package item

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
)

type UseCase interface {
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.Item, error)
	GetItem(ctx context.Context, tenantID, id string) (*model.Item, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, tenantID, id string) error
	SearchItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error)
}
