package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	itemDto "github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	ledgerDto "github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	ledgerUsecase "github.com/fekuna/shelter-inventory-service/internal/ledger/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/lock"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/memstore"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/stock/dto"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const tenant = "shelter-1"

type fixture struct {
	store  *memstore.Store
	ledger ledger.UseCase
	uc     *stockUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	ledgerUC := ledgerUsecase.NewLedgerUseCase(store.Items(), store.Lots(), store.Ledger(), store.TxManager(),
		lock.NewLocalLocker(), nil, nil, logger.NewNop(), ledgerUsecase.Config{})
	uc := NewStockUseCase(store.Items(), store.Lots(), store.Ledger(), nil, logger.NewNop()).(*stockUseCase)
	return &fixture{store: store, ledger: ledgerUC, uc: uc}
}

func (f *fixture) item(t *testing.T, id, name string, threshold int64) {
	t.Helper()
	err := f.store.Items().Create(context.Background(), &model.Item{
		BaseModel:        model.BaseModel{ID: id, CreatedAt: time.Now()},
		TenantID:         tenant,
		Name:             name,
		Category:         model.CategoryFood,
		Unit:             "kg",
		ReorderThreshold: decimal.NewFromInt(threshold),
		IsActive:         true,
	})
	if err != nil {
		t.Fatal(err)
	}
}

// lot creates an empty lot and posts qty to it through the ledger.
func (f *fixture) lot(t *testing.T, id, itemID string, qty int64, expires *time.Time) {
	t.Helper()
	ctx := context.Background()
	err := f.store.Lots().Create(ctx, &model.Lot{
		BaseModel: model.BaseModel{ID: id, CreatedAt: time.Now()},
		TenantID:  tenant,
		ItemID:    itemID,
		ExpiresAt: expires,
	})
	if err != nil {
		t.Fatal(err)
	}
	lotID := id
	_, err = f.ledger.RecordTransaction(ctx, &ledgerDto.RecordTransactionInput{
		TenantID: tenant,
		ItemID:   itemID,
		LotID:    &lotID,
		Reason:   model.ReasonOpeningBalance,
		Quantity: decimal.NewFromInt(qty),
		ActorID:  "staff-1",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestListStock_LowStock(t *testing.T) {
	f := newFixture(t)
	f.item(t, "dry", "Dry Food A", 10)
	f.item(t, "wet", "Wet Food", 2)
	f.lot(t, "L1", "dry", 5, nil)
	f.lot(t, "L2", "wet", 5, nil)

	items, total, err := f.uc.ListStock(context.Background(), &itemDto.ItemFilters{TenantID: tenant, LowStockOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || items[0].ID != "dry" || !items[0].QuantityCurrent.Equal(decimal.NewFromInt(5)) {
		t.Errorf("low stock = %+v", items)
	}
}

func TestGetStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := time.Now().Add(48 * time.Hour)
	f.item(t, "vax", "Vaccine X", 0)
	f.lot(t, "late", "vax", 10, nil)
	f.lot(t, "early", "vax", 3, &soon)

	first, err := f.uc.GetStock(ctx, tenant, "vax")
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Lots) != 2 || first.Lots[0].ID != "early" || !first.Item.QuantityCurrent.Equal(decimal.NewFromInt(13)) {
		t.Errorf("stock = %+v", first)
	}

	second, _ := f.uc.GetStock(ctx, tenant, "vax")
	if !second.Item.QuantityCurrent.Equal(first.Item.QuantityCurrent) || len(second.Lots) != len(first.Lots) {
		t.Error("repeated reads disagree")
	}

	if _, err := f.uc.GetStock(ctx, tenant, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestListTransactions_DaysWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time { return now }
	f.item(t, "dry", "Dry Food A", 0)

	for i, age := range []int{40, 10, 1} {
		err := f.store.Ledger().Insert(ctx, &model.Transaction{
			ID:        string(rune('a' + i)),
			TenantID:  tenant,
			ItemID:    "dry",
			Direction: model.DirectionIn,
			Reason:    model.ReasonDonation,
			Quantity:  decimal.NewFromInt(1),
			ActorID:   "staff-1",
			CreatedAt: now.AddDate(0, 0, -age),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	txs, total, err := f.uc.ListTransactions(ctx, &dto.HistoryFilters{TenantID: tenant, ItemID: "dry", Days: 30})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || txs[0].ID != "c" || txs[1].ID != "b" {
		t.Errorf("history = %d rows, first %s", total, txs[0].ID)
	}

	_, all, _ := f.uc.ListTransactions(ctx, &dto.HistoryFilters{TenantID: tenant, ItemID: "dry"})
	if all != 3 {
		t.Errorf("unbounded history = %d, want 3", all)
	}
}

func TestAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "dry", "Dry Food A", 0)
	f.item(t, "wet", "Wet Food", 0)
	f.lot(t, "L1", "dry", 5, nil)
	f.lot(t, "L2", "wet", 5, nil)

	findings, err := f.uc.Audit(ctx, tenant)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Fatalf("clean audit found %+v", findings)
	}

	// A lot-less consumption keeps the ledger consistent but leaves the lots behind.
	_, err = f.ledger.RecordTransaction(ctx, &ledgerDto.RecordTransactionInput{
		TenantID: tenant,
		ItemID:   "wet",
		Reason:   model.ReasonConsumption,
		Quantity: decimal.NewFromInt(2),
		ActorID:  "staff-1",
	})
	if err != nil {
		t.Fatal(err)
	}

	findings, err = f.uc.Audit(ctx, tenant)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %+v", findings)
	}
	got := findings[0]
	if got.ItemID != "wet" || got.LedgerDrift() || !got.LotDrift() {
		t.Errorf("finding = %+v", got)
	}
	if !got.Cached.Equal(decimal.NewFromInt(3)) || !got.LotSum.Equal(decimal.NewFromInt(5)) {
		t.Errorf("cached %s lots %s", got.Cached, got.LotSum)
	}
}

func TestExpiringLots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := time.Now().Add(3 * 24 * time.Hour)
	later := time.Now().Add(60 * 24 * time.Hour)
	f.item(t, "vax", "Vaccine X", 0)
	f.lot(t, "soon", "vax", 2, &soon)
	f.lot(t, "later", "vax", 2, &later)
	f.lot(t, "undated", "vax", 2, nil)

	lots, err := f.uc.ExpiringLots(ctx, tenant, 7*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(lots) != 1 || lots[0].ID != "soon" {
		t.Errorf("expiring = %+v", lots)
	}
}

func TestExportStockReport(t *testing.T) {
	f := newFixture(t)
	expiry := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
	f.item(t, "dry", "Dry Food A", 10)
	f.lot(t, "L1", "dry", 5, &expiry)

	var buf bytes.Buffer
	if err := f.uc.ExportStockReport(context.Background(), tenant, &buf); err != nil {
		t.Fatalf("ExportStockReport: %v", err)
	}

	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	items, err := wb.GetRows(itemsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1][1] != "Dry Food A" || items[1][4] != "5" {
		t.Errorf("items sheet = %v", items)
	}

	lots, err := wb.GetRows(lotsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(lots) != 2 || lots[1][0] != "L1" || lots[1][4] != "2027-02-01" {
		t.Errorf("lots sheet = %v", lots)
	}
}

func TestReportFileName(t *testing.T) {
	got := ReportFileName("shelter-1", time.Date(2026, 4, 2, 8, 5, 9, 0, time.UTC))
	if got != "stock_shelter-1_20260402_080509.xlsx" {
		t.Errorf("name = %s", got)
	}
}
