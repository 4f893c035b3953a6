package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/database"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	"github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/lock"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/search"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const indexName = "inventory_items"

const indexMapping = `{
	"mappings": {
		"properties": {
			"tenant_id": { "type": "keyword" },
			"name": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"category": { "type": "keyword" },
			"unit": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	}
}`

type itemUseCase struct {
	repo   item.Repository
	lots   lot.Repository
	txm    database.TxManager
	locker lock.Locker
	es     *search.Client
	logger logger.ZapLogger
}

// NewItemUseCase builds the catalog. es may be nil, in which case search uses the database only.
func NewItemUseCase(repo item.Repository, lots lot.Repository, txm database.TxManager, locker lock.Locker, es *search.Client, log logger.ZapLogger) item.UseCase {
	return &itemUseCase{
		repo:   repo,
		lots:   lots,
		txm:    txm,
		locker: locker,
		es:     es,
		logger: log,
	}
}

func (uc *itemUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.InvalidInput("item name is required")
	}
	if !input.Category.Valid() {
		return nil, apperr.InvalidInput("unknown item category %q", input.Category)
	}
	if err := checkAmounts(input.ReorderThreshold, input.EnergyDensity, input.UnitPrice); err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueName(ctx, input.TenantID, name, input.Category, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	it := &model.Item{
		BaseModel:        model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:         input.TenantID,
		Name:             name,
		Category:         input.Category,
		Unit:             strings.TrimSpace(input.Unit),
		ReorderThreshold: input.ReorderThreshold,
		EnergyDensity:    input.EnergyDensity,
		UnitPrice:        input.UnitPrice,
		QuantityCurrent:  decimal.Zero,
		IsActive:         true,
	}

	if err := uc.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), it)

	return it, nil
}

func (uc *itemUseCase) GetItem(ctx context.Context, tenantID, id string) (*model.Item, error) {
	it, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.NotFound("item", id)
	}
	return it, nil
}

// UpdateItem applies the non-nil fields. The cached quantity is owned by the ledger and never changes here.
func (uc *itemUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.Item, error) {
	it, err := uc.GetItem(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.InvalidInput("item name is required")
		}
		it.Name = name
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return nil, apperr.InvalidInput("unknown item category %q", *input.Category)
		}
		it.Category = *input.Category
	}
	if input.Unit != nil {
		it.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.ReorderThreshold != nil {
		it.ReorderThreshold = *input.ReorderThreshold
	}
	if input.EnergyDensity != nil {
		it.EnergyDensity = input.EnergyDensity
	}
	if input.UnitPrice != nil {
		it.UnitPrice = input.UnitPrice
	}
	if input.IsActive != nil {
		it.IsActive = *input.IsActive
	}
	if err := checkAmounts(it.ReorderThreshold, it.EnergyDensity, it.UnitPrice); err != nil {
		return nil, err
	}
	if input.Name != nil || input.Category != nil {
		if err := uc.ensureUniqueName(ctx, it.TenantID, it.Name, it.Category, it.ID); err != nil {
			return nil, err
		}
	}

	it.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, it); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), it)

	return it, nil
}

// DeleteItem soft-deletes an item whose lots are all empty.
func (uc *itemUseCase) DeleteItem(ctx context.Context, tenantID, id string) error {
	release, err := uc.locker.Acquire(ctx, lock.ItemKey(tenantID, id))
	if err != nil {
		return err
	}
	defer release()

	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		it, err := uc.repo.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if it == nil {
			return apperr.NotFound("item", id)
		}

		active, err := uc.lots.HasStock(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if active {
			return apperr.New(apperr.KindHasActiveStock, "item %s still has lots with stock", id)
		}

		return uc.repo.SoftDelete(ctx, tenantID, id, time.Now())
	})
	if err != nil {
		return err
	}

	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete item from ES", zap.Error(err))
			}
		}()
	}

	return nil
}

// SearchItems matches names through Elasticsearch when available and reads
// the matching rows from the database. Any search failure falls back to the database.
func (uc *itemUseCase) SearchItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error) {
	if filters.SearchQuery != "" && uc.es != nil && !filters.LowStockOnly && !filters.InStockOnly {
		items, total, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return items, total, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	return uc.repo.FindAll(ctx, filters)
}

func (uc *itemUseCase) searchElastic(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, int, error) {
	must := []map[string]interface{}{
		{
			"match": map[string]interface{}{
				"name": map[string]interface{}{
					"query":     filters.SearchQuery,
					"fuzziness": "AUTO",
				},
			},
		},
		{"term": map[string]interface{}{"tenant_id": filters.TenantID}},
	}
	if filters.Category != nil {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"category": string(*filters.Category)}})
	}

	q := map[string]interface{}{
		"query":   map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"_source": false,
	}
	if filters.PageSize > 0 {
		q["from"] = (max(filters.Page, 1) - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	items := make([]model.Item, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		it, err := uc.repo.FindByID(ctx, filters.TenantID, hit.ID)
		if err != nil {
			return nil, 0, err
		}
		if it != nil {
			items = append(items, *it)
		}
	}
	return items, res.Hits.Total.Value, nil
}

func (uc *itemUseCase) syncToElastic(ctx context.Context, it *model.Item) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)

	doc := map[string]interface{}{
		"tenant_id":  it.TenantID,
		"name":       it.Name,
		"category":   it.Category,
		"unit":       it.Unit,
		"created_at": it.CreatedAt,
	}
	if err := uc.es.Index(ctx, indexName, it.ID, doc); err != nil {
		uc.logger.Error("failed to index item", zap.String("item_id", it.ID), zap.Error(err))
	}
}

func (uc *itemUseCase) ensureUniqueName(ctx context.Context, tenantID, name string, category model.Category, selfID string) error {
	existing, err := uc.repo.FindByName(ctx, tenantID, name, &category)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperr.InvalidInput("item %q already exists in category %s", name, category)
	}
	return nil
}

func checkAmounts(threshold decimal.Decimal, energyDensity, unitPrice *decimal.Decimal) error {
	if threshold.IsNegative() {
		return apperr.InvalidInput("reorder threshold must not be negative")
	}
	if energyDensity != nil && energyDensity.IsNegative() {
		return apperr.InvalidInput("energy density must not be negative")
	}
	if unitPrice != nil && unitPrice.IsNegative() {
		return apperr.InvalidInput("unit price must not be negative")
	}
	return nil
}
