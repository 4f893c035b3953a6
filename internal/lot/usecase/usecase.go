package usecase

import (
	"context"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	ledgerDto "github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	"github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type lotUseCase struct {
	repo   lot.Repository
	items  item.Repository
	ledger ledger.UseCase
	logger logger.ZapLogger
}

func NewLotUseCase(repo lot.Repository, items item.Repository, ledgerUC ledger.UseCase, log logger.ZapLogger) lot.UseCase {
	return &lotUseCase{
		repo:   repo,
		items:  items,
		ledger: ledgerUC,
		logger: log,
	}
}

// CreateLot registers an empty lot. Stock enters only through a ledger posting.
func (uc *lotUseCase) CreateLot(ctx context.Context, input *dto.CreateLotInput) (*model.Lot, error) {
	if err := uc.validate(ctx, input); err != nil {
		return nil, err
	}

	l := newLot(input)
	if err := uc.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// OpenLot creates a lot and posts its opening_balance in the same unit.
func (uc *lotUseCase) OpenLot(ctx context.Context, input *dto.OpenLotInput) (*model.Lot, *model.Transaction, error) {
	if !input.Quantity.IsPositive() {
		return nil, nil, apperr.InvalidInput("opening quantity must be positive")
	}
	if !model.FitsScale(input.Quantity) {
		return nil, nil, apperr.InvalidInput("opening quantity %s has more than %d decimal places", input.Quantity, model.QuantityScale)
	}
	if err := uc.validate(ctx, &input.CreateLotInput); err != nil {
		return nil, nil, err
	}

	var (
		l *model.Lot
		t *model.Transaction
	)
	err := uc.ledger.WithItemLocks(ctx, input.TenantID, []string{input.ItemID}, func(ctx context.Context, rec ledger.Recorder) error {
		l = newLot(&input.CreateLotInput)
		if err := uc.repo.Create(ctx, l); err != nil {
			return err
		}

		var err error
		t, err = rec.Record(ctx, &ledgerDto.RecordTransactionInput{
			TenantID: input.TenantID,
			ItemID:   input.ItemID,
			LotID:    &l.ID,
			Reason:   model.ReasonOpeningBalance,
			Quantity: input.Quantity,
			Note:     input.Note,
			ActorID:  input.ActorID,
		})
		if err != nil {
			return err
		}
		l.Quantity = l.Quantity.Add(t.Quantity)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("lot opened",
		zap.String("tenant_id", input.TenantID),
		zap.String("item_id", input.ItemID),
		zap.String("lot_id", l.ID),
		zap.String("quantity", input.Quantity.String()),
	)
	return l, t, nil
}

func (uc *lotUseCase) GetLot(ctx context.Context, tenantID, id string) (*model.Lot, error) {
	l, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperr.NotFound("lot", id)
	}
	return l, nil
}

func (uc *lotUseCase) UpdateLot(ctx context.Context, input *dto.UpdateLotInput) (*model.Lot, error) {
	l, err := uc.repo.FindByID(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperr.NotFound("lot", input.ID)
	}

	if input.LotNumber != nil {
		l.LotNumber = input.LotNumber
	}
	if input.ExpiresAt != nil {
		l.ExpiresAt = input.ExpiresAt
	}
	if input.CostPerUnit != nil {
		if input.CostPerUnit.IsNegative() {
			return nil, apperr.InvalidInput("cost per unit must not be negative")
		}
		l.CostPerUnit = input.CostPerUnit
	}
	l.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *lotUseCase) ListLots(ctx context.Context, filters *dto.LotFilters) ([]model.Lot, error) {
	return uc.repo.List(ctx, filters)
}

func (uc *lotUseCase) validate(ctx context.Context, input *dto.CreateLotInput) error {
	if input.CostPerUnit != nil && input.CostPerUnit.IsNegative() {
		return apperr.InvalidInput("cost per unit must not be negative")
	}
	it, err := uc.items.FindByID(ctx, input.TenantID, input.ItemID)
	if err != nil {
		return err
	}
	if it == nil {
		return apperr.NotFound("item", input.ItemID)
	}
	return nil
}

func newLot(input *dto.CreateLotInput) *model.Lot {
	now := time.Now()
	return &model.Lot{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:    input.TenantID,
		ItemID:      input.ItemID,
		LotNumber:   input.LotNumber,
		ExpiresAt:   input.ExpiresAt,
		CostPerUnit: input.CostPerUnit,
	}
}
