package lot

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
)

type UseCase interface {
	CreateLot(ctx context.Context, input *dto.CreateLotInput) (*model.Lot, error)
	OpenLot(ctx context.Context, input *dto.OpenLotInput) (*model.Lot, *model.Transaction, error)
	GetLot(ctx context.Context, tenantID, id string) (*model.Lot, error)
	UpdateLot(ctx context.Context, input *dto.UpdateLotInput) (*model.Lot, error)
	ListLots(ctx context.Context, filters *dto.LotFilters) ([]model.Lot, error)
}
