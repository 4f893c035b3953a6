package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/shelter-inventory-service/internal/database/postgres"
	"github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Insert(ctx context.Context, t *model.Transaction) error {
	query := `
        INSERT INTO inventory_transactions (
            id, tenant_id, item_id, lot_id, direction, reason, quantity,
            quantity_before, quantity_after, note, related_type, related_id,
            actor_id, created_at
        )
        VALUES (
            :id, :tenant_id, :item_id, :lot_id, :direction, :reason, :quantity,
            :quantity_before, :quantity_after, :note, :related_type, :related_id,
            :actor_id, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, t); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.TransactionFilters) ([]model.Transaction, int, error) {
	var txs []model.Transaction
	var count int

	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.Since != nil {
		conditions = append(conditions, "created_at >= :since")
		args["since"] = *f.Since
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")
	ext := postgres.Ext(ctx, r.DB)

	if err := postgres.NamedGet(ctx, ext, &count, "SELECT count(*) FROM inventory_transactions"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_transactions" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := postgres.NamedSelect(ctx, ext, &txs, query, args); err != nil {
		return nil, 0, err
	}
	return txs, count, nil
}

func (r *PGRepository) SumByItem(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	var rows []struct {
		ItemID string          `db:"item_id"`
		Total  decimal.Decimal `db:"total"`
	}
	err := sqlx.SelectContext(ctx, postgres.Ext(ctx, r.DB), &rows, `
        SELECT item_id, COALESCE(SUM(quantity), 0) AS total
        FROM inventory_transactions WHERE tenant_id = $1
        GROUP BY item_id
    `, tenantID)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}

	sums := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.ItemID] = row.Total
	}
	return sums, nil
}
