package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/database/postgres"
	"github.com/fekuna/shelter-inventory-service/internal/item/dto"
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

func (r *PGRepository) Create(ctx context.Context, it *model.Item) error {
	query := `
        INSERT INTO items (
            id, tenant_id, name, category, unit, reorder_threshold,
            energy_density, unit_price, quantity_current, is_active,
            created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :name, :category, :unit, :reorder_threshold,
            :energy_density, :unit_price, :quantity_current, :is_active,
            :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, it)
	if postgres.IsUniqueViolation(err) {
		return duplicateName(it)
	}
	return err
}

func duplicateName(it *model.Item) error {
	return apperr.InvalidInput("item %q already exists in category %s", it.Name, it.Category)
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Item, error) {
	return r.findOne(ctx, `SELECT * FROM items WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`, tenantID, id)
}

func (r *PGRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Item, error) {
	return r.findOne(ctx, `SELECT * FROM items WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL FOR UPDATE`, tenantID, id)
}

func (r *PGRepository) FindByName(ctx context.Context, tenantID, name string, category *model.Category) (*model.Item, error) {
	if category != nil {
		return r.findOne(ctx, `
            SELECT * FROM items
            WHERE tenant_id = $1 AND name = $2 AND category = $3 AND deleted_at IS NULL
            ORDER BY created_at LIMIT 1`, tenantID, name, string(*category))
	}
	return r.findOne(ctx, `
        SELECT * FROM items
        WHERE tenant_id = $1 AND name = $2 AND deleted_at IS NULL
        ORDER BY created_at LIMIT 1`, tenantID, name)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Item, error) {
	var it model.Item
	found, err := postgres.GetOne(ctx, postgres.Ext(ctx, r.DB), &it, query, args...)
	if err != nil || !found {
		return nil, err
	}
	return &it, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.Item, int, error) {
	var items []model.Item
	var count int

	conditions := []string{"deleted_at IS NULL"}
	args := map[string]interface{}{}

	if f.TenantID != "" {
		conditions = append(conditions, "tenant_id = :tenant_id")
		args["tenant_id"] = f.TenantID
	}
	if f.Category != nil {
		conditions = append(conditions, "category = :category")
		args["category"] = string(*f.Category)
	}
	if f.LowStockOnly {
		conditions = append(conditions, "quantity_current < reorder_threshold")
	}
	if f.InStockOnly {
		conditions = append(conditions, "quantity_current > 0")
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")
	ext := postgres.Ext(ctx, r.DB)

	if err := postgres.NamedGet(ctx, ext, &count, "SELECT count(*) FROM items"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM items" + whereClause + " ORDER BY name ASC, id ASC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := postgres.NamedSelect(ctx, ext, &items, query, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) Update(ctx context.Context, it *model.Item) error {
	query := `
        UPDATE items
        SET name = :name,
            category = :category,
            unit = :unit,
            reorder_threshold = :reorder_threshold,
            energy_density = :energy_density,
            unit_price = :unit_price,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND tenant_id = :tenant_id AND deleted_at IS NULL
    `
	res, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, it)
	if postgres.IsUniqueViolation(err) {
		return duplicateName(it)
	}
	if err != nil {
		return err
	}
	return postgres.ExpectOne(res, "item")
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, tenantID, id string, expected, next decimal.Decimal) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx, `
        UPDATE items
        SET quantity_current = $4, updated_at = NOW()
        WHERE tenant_id = $1 AND id = $2 AND quantity_current = $3
    `, tenantID, id, expected, next)
	if err != nil {
		return fmt.Errorf("update item quantity: %w", err)
	}
	return postgres.ExpectOne(res, "item quantity")
}

func (r *PGRepository) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx, `
        UPDATE items SET deleted_at = $3, is_active = FALSE, updated_at = $3
        WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL
    `, tenantID, id, at)
	if err != nil {
		return err
	}
	return postgres.ExpectOne(res, "item")
}

func (r *PGRepository) ListTenants(ctx context.Context) ([]string, error) {
	var tenants []string
	err := sqlx.SelectContext(ctx, postgres.Ext(ctx, r.DB), &tenants,
		`SELECT DISTINCT tenant_id FROM items WHERE deleted_at IS NULL ORDER BY tenant_id`)
	return tenants, err
}
