package consumption

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/consumption/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
)

type UseCase interface {
	// DeductForConsumption posts consumption transactions against the lots
	// expiring first. Lots without expiry are used last.
	DeductForConsumption(ctx context.Context, input *dto.DeductInput) (*model.Deduction, error)
}
