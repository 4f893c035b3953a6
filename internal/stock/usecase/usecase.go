package usecase

import (
	"context"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	itemDto "github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	ledgerDto "github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	lotDto "github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/metrics"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/stock"
	"github.com/fekuna/shelter-inventory-service/internal/stock/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type stockUseCase struct {
	items   item.Repository
	lots    lot.Repository
	txs     ledger.Repository
	metrics *metrics.Metrics
	logger  logger.ZapLogger
	now     func() time.Time
}

func NewStockUseCase(items item.Repository, lots lot.Repository, txs ledger.Repository, m *metrics.Metrics, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		items:   items,
		lots:    lots,
		txs:     txs,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

func (uc *stockUseCase) ListStock(ctx context.Context, filters *itemDto.ItemFilters) ([]model.Item, int, error) {
	return uc.items.FindAll(ctx, filters)
}

func (uc *stockUseCase) GetStock(ctx context.Context, tenantID, itemID string) (*model.ItemStock, error) {
	it, err := uc.items.FindByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.NotFound("item", itemID)
	}

	lots, err := uc.lots.List(ctx, &lotDto.LotFilters{TenantID: tenantID, ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return &model.ItemStock{Item: *it, Lots: lots}, nil
}

func (uc *stockUseCase) ListTransactions(ctx context.Context, filters *dto.HistoryFilters) ([]model.Transaction, int, error) {
	f := &ledgerDto.TransactionFilters{
		TenantID: filters.TenantID,
		ItemID:   filters.ItemID,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}
	if filters.Days > 0 {
		since := uc.now().AddDate(0, 0, -filters.Days)
		f.Since = &since
	}
	return uc.txs.FindAll(ctx, f)
}

func (uc *stockUseCase) Audit(ctx context.Context, tenantID string) ([]model.AuditFinding, error) {
	items, _, err := uc.items.FindAll(ctx, &itemDto.ItemFilters{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	ledgerSums, err := uc.txs.SumByItem(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	lotSums, err := uc.lots.SumByItem(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var findings []model.AuditFinding
	for _, it := range items {
		f := model.AuditFinding{
			TenantID:  tenantID,
			ItemID:    it.ID,
			ItemName:  it.Name,
			Cached:    it.QuantityCurrent,
			LedgerSum: sumOrZero(ledgerSums, it.ID),
			LotSum:    sumOrZero(lotSums, it.ID),
		}
		if f.LedgerDrift() || f.LotDrift() {
			findings = append(findings, f)
		}
	}

	uc.metrics.AuditDrift(tenantID, len(findings))
	if len(findings) > 0 {
		uc.logger.Warn("stock audit found drifting items",
			zap.String("tenant_id", tenantID),
			zap.Int("items", len(findings)),
		)
	}
	return findings, nil
}

func sumOrZero(sums map[string]decimal.Decimal, id string) decimal.Decimal {
	if v, ok := sums[id]; ok {
		return v
	}
	return decimal.Zero
}

func (uc *stockUseCase) ExpiringLots(ctx context.Context, tenantID string, within time.Duration) ([]model.Lot, error) {
	before := uc.now().Add(within)
	return uc.lots.List(ctx, &lotDto.LotFilters{
		TenantID:      tenantID,
		InStockOnly:   true,
		ExpiresBefore: &before,
	})
}
