package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/shelter-inventory-service/internal/database/postgres"
	"github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const fifoOrder = " ORDER BY expires_at ASC NULLS LAST, created_at ASC, id ASC"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, l *model.Lot) error {
	query := `
        INSERT INTO lots (
            id, tenant_id, item_id, lot_number, expires_at, quantity,
            cost_per_unit, created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :item_id, :lot_number, :expires_at, :quantity,
            :cost_per_unit, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, l)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Lot, error) {
	return r.findOne(ctx, `SELECT * FROM lots WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *PGRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Lot, error) {
	return r.findOne(ctx, `SELECT * FROM lots WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *PGRepository) FindByNumber(ctx context.Context, tenantID, itemID, lotNumber string) (*model.Lot, error) {
	return r.findOne(ctx, `
        SELECT * FROM lots
        WHERE tenant_id = $1 AND item_id = $2 AND lot_number = $3
        ORDER BY created_at ASC LIMIT 1`, tenantID, itemID, lotNumber)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Lot, error) {
	var l model.Lot
	found, err := postgres.GetOne(ctx, postgres.Ext(ctx, r.DB), &l, query, args...)
	if err != nil || !found {
		return nil, err
	}
	return &l, nil
}

func (r *PGRepository) List(ctx context.Context, f *dto.LotFilters) ([]model.Lot, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.InStockOnly {
		conditions = append(conditions, "quantity > 0")
	}
	if f.ExpiresBefore != nil {
		conditions = append(conditions, "expires_at IS NOT NULL AND expires_at < :expires_before")
		args["expires_before"] = *f.ExpiresBefore
	}

	query := "SELECT * FROM lots WHERE " + strings.Join(conditions, " AND ") + fifoOrder

	var lots []model.Lot
	if err := postgres.NamedSelect(ctx, postgres.Ext(ctx, r.DB), &lots, query, args); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

func (r *PGRepository) Update(ctx context.Context, l *model.Lot) error {
	query := `
        UPDATE lots
        SET lot_number = :lot_number,
            expires_at = :expires_at,
            cost_per_unit = :cost_per_unit,
            updated_at = :updated_at
        WHERE id = :id AND tenant_id = :tenant_id
    `
	res, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, l)
	if err != nil {
		return err
	}
	return postgres.ExpectOne(res, "lot")
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, tenantID, id string, expected, next decimal.Decimal) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx, `
        UPDATE lots
        SET quantity = $4, updated_at = NOW()
        WHERE tenant_id = $1 AND id = $2 AND quantity = $3
    `, tenantID, id, expected, next)
	if err != nil {
		return fmt.Errorf("update lot quantity: %w", err)
	}
	return postgres.ExpectOne(res, "lot quantity")
}

func (r *PGRepository) HasStock(ctx context.Context, tenantID, itemID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, postgres.Ext(ctx, r.DB), &exists, `
        SELECT EXISTS (SELECT 1 FROM lots WHERE tenant_id = $1 AND item_id = $2 AND quantity > 0)
    `, tenantID, itemID)
	return exists, err
}

func (r *PGRepository) SumByItem(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	var rows []struct {
		ItemID string          `db:"item_id"`
		Total  decimal.Decimal `db:"total"`
	}
	err := sqlx.SelectContext(ctx, postgres.Ext(ctx, r.DB), &rows, `
        SELECT item_id, COALESCE(SUM(quantity), 0) AS total
        FROM lots WHERE tenant_id = $1
        GROUP BY item_id
    `, tenantID)
	if err != nil {
		return nil, fmt.Errorf("sum lots: %w", err)
	}

	sums := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.ItemID] = row.Total
	}
	return sums, nil
}
