package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/consumption"
	"github.com/fekuna/shelter-inventory-service/internal/consumption/dto"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	ledgerDto "github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	lotDto "github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type consumptionUseCase struct {
	items  item.Repository
	lots   lot.Repository
	ledger ledger.UseCase
	policy model.ConsumptionPolicy
	logger logger.ZapLogger
}

// NewConsumptionUseCase uses policy when a request does not name one.
// An empty policy means single_lot.
func NewConsumptionUseCase(items item.Repository, lots lot.Repository, ledgerUC ledger.UseCase, policy model.ConsumptionPolicy, log logger.ZapLogger) consumption.UseCase {
	if policy == "" {
		policy = model.PolicySingleLot
	}
	return &consumptionUseCase{
		items:  items,
		lots:   lots,
		ledger: ledgerUC,
		policy: policy,
		logger: log,
	}
}

func (uc *consumptionUseCase) DeductForConsumption(ctx context.Context, input *dto.DeductInput) (*model.Deduction, error) {
	if !input.Amount.IsPositive() {
		return nil, apperr.InvalidInput("consumption amount must be positive")
	}
	if !model.FitsScale(input.Amount) {
		return nil, apperr.InvalidInput("consumption amount %s has more than %d decimal places", input.Amount, model.QuantityScale)
	}
	policy := input.Policy
	if policy == "" {
		policy = uc.policy
	}
	if _, err := model.ParseConsumptionPolicy(string(policy)); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "invalid consumption policy")
	}

	// 1. Resolve the item
	it, err := uc.resolveItem(ctx, input)
	if err != nil {
		return nil, err
	}

	// 2. Select lots and post under the item lock
	var result *model.Deduction
	err = uc.ledger.WithItemLocks(ctx, it.TenantID, []string{it.ID}, func(ctx context.Context, rec ledger.Recorder) error {
		lots, err := uc.lots.List(ctx, &lotDto.LotFilters{
			TenantID:    it.TenantID,
			ItemID:      it.ID,
			InStockOnly: true,
		})
		if err != nil {
			return err
		}
		if len(lots) == 0 {
			return apperr.New(apperr.KindNoStockAvailable, "no lot of item %s has stock", it.Name)
		}

		d := &model.Deduction{
			Item:             *it,
			Lot:              lots[0],
			Requested:        input.Amount,
			QuantityDeducted: decimal.Zero,
		}
		remaining := input.Amount

		for i := range lots {
			l := &lots[i]
			take := decimal.Min(remaining, l.Quantity)

			t, err := rec.Record(ctx, &ledgerDto.RecordTransactionInput{
				TenantID:    it.TenantID,
				ItemID:      it.ID,
				LotID:       &l.ID,
				Reason:      model.ReasonConsumption,
				Quantity:    take,
				Note:        input.Note,
				RelatedType: input.RelatedType,
				RelatedID:   input.RelatedID,
				ActorID:     input.ActorID,
			})
			if err != nil {
				return err
			}

			l.Quantity = l.Quantity.Sub(take)
			if i == 0 {
				d.Lot = *l
			}
			d.Item.QuantityCurrent = t.QuantityAfter
			d.QuantityDeducted = d.QuantityDeducted.Add(take)
			d.Allocations = append(d.Allocations, model.Allocation{
				LotID:         l.ID,
				Quantity:      take,
				TransactionID: t.ID,
			})

			remaining = remaining.Sub(take)
			if policy == model.PolicySingleLot || !remaining.IsPositive() {
				break
			}
		}

		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Partial() {
		uc.logger.Warn("consumption partially fulfilled",
			zap.String("tenant_id", it.TenantID),
			zap.String("item_id", it.ID),
			zap.String("policy", string(policy)),
			zap.String("requested", result.Requested.String()),
			zap.String("deducted", result.QuantityDeducted.String()),
		)
	}
	return result, nil
}

func (uc *consumptionUseCase) resolveItem(ctx context.Context, input *dto.DeductInput) (*model.Item, error) {
	if input.ItemID != "" {
		it, err := uc.items.FindByID(ctx, input.TenantID, input.ItemID)
		if err != nil {
			return nil, err
		}
		if it == nil {
			return nil, apperr.NotFound("item", input.ItemID)
		}
		return it, nil
	}

	name := strings.TrimSpace(input.ItemName)
	if name == "" {
		return nil, apperr.InvalidInput("item id or name is required")
	}
	it, err := uc.items.FindByName(ctx, input.TenantID, name, input.Category)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.NotFound("item", name)
	}
	return it, nil
}
