package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/shelter-inventory-service/internal/database/postgres"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement/dto"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) NextSequence(ctx context.Context, tenantID string, year int) (int, error) {
	var next int
	err := sqlx.GetContext(ctx, postgres.Ext(ctx, r.DB), &next, `
        INSERT INTO purchase_order_sequences (tenant_id, year, last_value)
        VALUES ($1, $2, 1)
        ON CONFLICT (tenant_id, year)
        DO UPDATE SET last_value = purchase_order_sequences.last_value + 1
        RETURNING last_value
    `, tenantID, year)
	if err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return next, nil
}

func (r *PGRepository) Create(ctx context.Context, o *model.PurchaseOrder) error {
	ext := postgres.Ext(ctx, r.DB)

	orderQuery := `
        INSERT INTO purchase_orders (
            id, tenant_id, order_number, supplier, status, total_items, received_items,
            ordered_at, expected_delivery_at, received_at, cancelled_at, note, created_by,
            created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :order_number, :supplier, :status, :total_items, :received_items,
            :ordered_at, :expected_delivery_at, :received_at, :cancelled_at, :note, :created_by,
            :created_at, :updated_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, ext, orderQuery, o); err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}

	lineQuery := `
        INSERT INTO purchase_order_lines (
            id, order_id, tenant_id, item_id, quantity_ordered, quantity_received, unit_price
        )
        VALUES (
            :id, :order_id, :tenant_id, :item_id, :quantity_ordered, :quantity_received, :unit_price
        )
    `
	for i := range o.Lines {
		if _, err := sqlx.NamedExecContext(ctx, ext, lineQuery, &o.Lines[i]); err != nil {
			return fmt.Errorf("insert purchase order line: %w", err)
		}
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.PurchaseOrder, error) {
	return r.findOne(ctx, `SELECT * FROM purchase_orders WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *PGRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.PurchaseOrder, error) {
	return r.findOne(ctx, `SELECT * FROM purchase_orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.PurchaseOrder, error) {
	var o model.PurchaseOrder
	found, err := postgres.GetOne(ctx, postgres.Ext(ctx, r.DB), &o, query, args...)
	if err != nil || !found {
		return nil, err
	}

	orders := []model.PurchaseOrder{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	var orders []model.PurchaseOrder
	var count int

	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.Status != nil {
		conditions = append(conditions, "status = :status")
		args["status"] = string(*f.Status)
	}
	if f.Supplier != "" {
		conditions = append(conditions, "supplier ILIKE :supplier")
		args["supplier"] = "%" + f.Supplier + "%"
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")
	ext := postgres.Ext(ctx, r.DB)

	if err := postgres.NamedGet(ctx, ext, &count, "SELECT count(*) FROM purchase_orders"+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM purchase_orders" + whereClause + " ORDER BY ordered_at DESC, order_number DESC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := postgres.NamedSelect(ctx, ext, &orders, query, args); err != nil {
		return nil, 0, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *PGRepository) attachLines(ctx context.Context, orders []model.PurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*model.PurchaseOrder, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	ext := postgres.Ext(ctx, r.DB)
	query, args, err := sqlx.In(`SELECT * FROM purchase_order_lines WHERE order_id IN (?) ORDER BY order_id, id`, ids)
	if err != nil {
		return err
	}

	var lines []model.PurchaseOrderLine
	if err := sqlx.SelectContext(ctx, ext, &lines, ext.Rebind(query), args...); err != nil {
		return fmt.Errorf("load purchase order lines: %w", err)
	}
	for _, l := range lines {
		o := byID[l.OrderID]
		o.Lines = append(o.Lines, l)
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, o *model.PurchaseOrder) error {
	query := `
        UPDATE purchase_orders
        SET status = :status,
            total_items = :total_items,
            received_items = :received_items,
            received_at = :received_at,
            cancelled_at = :cancelled_at,
            updated_at = :updated_at
        WHERE id = :id AND tenant_id = :tenant_id
    `
	res, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, o)
	if err != nil {
		return err
	}
	return postgres.ExpectOne(res, "purchase order")
}

func (r *PGRepository) UpdateLineReceived(ctx context.Context, tenantID, lineID string, expected, next decimal.Decimal) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx, `
        UPDATE purchase_order_lines
        SET quantity_received = $4
        WHERE tenant_id = $1 AND id = $2 AND quantity_received = $3
    `, tenantID, lineID, expected, next)
	if err != nil {
		return fmt.Errorf("update line received: %w", err)
	}
	return postgres.ExpectOne(res, "purchase order line")
}

func (r *PGRepository) ListOutstanding(ctx context.Context, tenantID, itemID string) ([]model.OnTheWayOrder, error) {
	var rows []model.OnTheWayOrder
	err := sqlx.SelectContext(ctx, postgres.Ext(ctx, r.DB), &rows, `
        SELECT o.id AS order_id, o.order_number, o.supplier, o.status, o.expected_delivery_at,
               SUM(l.quantity_ordered - l.quantity_received) AS outstanding
        FROM purchase_order_lines l
        JOIN purchase_orders o ON o.id = l.order_id
        WHERE l.tenant_id = $1 AND l.item_id = $2 AND o.status <> 'cancelled'
        GROUP BY o.id, o.order_number, o.supplier, o.status, o.expected_delivery_at, o.ordered_at
        HAVING SUM(l.quantity_ordered - l.quantity_received) > 0
        ORDER BY o.ordered_at ASC
    `, tenantID, itemID)
	if err != nil {
		return nil, fmt.Errorf("list outstanding orders: %w", err)
	}
	return rows, nil
}
