package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	itemDto "github.com/fekuna/shelter-inventory-service/internal/item/dto"
	lotDto "github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet = "Items"
	lotsSheet  = "Lots"
)

// ExportStockReport writes an XLSX workbook with one row per item and one per lot.
func (uc *stockUseCase) ExportStockReport(ctx context.Context, tenantID string, w io.Writer) error {
	items, _, err := uc.items.FindAll(ctx, &itemDto.ItemFilters{TenantID: tenantID})
	if err != nil {
		return err
	}
	lots, err := uc.lots.List(ctx, &lotDto.LotFilters{TenantID: tenantID})
	if err != nil {
		return err
	}

	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), itemsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(lotsSheet); err != nil {
		return err
	}

	itemRows := [][]interface{}{{
		"item_id", "name", "category", "unit", "quantity_current", "reorder_threshold", "low_stock",
	}}
	for _, it := range items {
		itemRows = append(itemRows, []interface{}{
			it.ID,
			it.Name,
			string(it.Category),
			it.Unit,
			it.QuantityCurrent.InexactFloat64(),
			it.ReorderThreshold.InexactFloat64(),
			it.LowStock(),
		})
	}
	if err := writeRows(f, itemsSheet, itemRows); err != nil {
		return err
	}

	lotRows := [][]interface{}{{
		"lot_id", "item_id", "item_name", "lot_number", "expires_at", "quantity", "cost_per_unit",
	}}
	for _, l := range lots {
		name, ok := names[l.ItemID]
		if !ok {
			continue
		}
		number, expires, cost := "", "", interface{}("")
		if l.LotNumber != nil {
			number = *l.LotNumber
		}
		if l.ExpiresAt != nil {
			expires = l.ExpiresAt.Format(time.DateOnly)
		}
		if l.CostPerUnit != nil {
			cost = l.CostPerUnit.InexactFloat64()
		}
		lotRows = append(lotRows, []interface{}{
			l.ID, l.ItemID, name, number, expires, l.Quantity.InexactFloat64(), cost,
		})
	}
	if err := writeRows(f, lotsSheet, lotRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write stock report: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// ReportFileName names an export for tenantID at t.
func ReportFileName(tenantID string, t time.Time) string {
	return fmt.Sprintf("stock_%s_%s.xlsx", tenantID, t.Format("20060102_150405"))
}

