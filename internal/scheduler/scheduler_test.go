package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	itemDto "github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/stock/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStock struct {
	audited  []string
	findings map[string][]model.AuditFinding
	expiring map[string][]model.Lot
	window   time.Duration
}

func (f *fakeStock) ListStock(context.Context, *itemDto.ItemFilters) ([]model.Item, int, error) {
	return nil, 0, nil
}

func (f *fakeStock) GetStock(context.Context, string, string) (*model.ItemStock, error) {
	return nil, nil
}

func (f *fakeStock) ListTransactions(context.Context, *dto.HistoryFilters) ([]model.Transaction, int, error) {
	return nil, 0, nil
}

func (f *fakeStock) Audit(_ context.Context, tenantID string) ([]model.AuditFinding, error) {
	f.audited = append(f.audited, tenantID)
	if tenantID == "broken" {
		return nil, errors.New("database unavailable")
	}
	return f.findings[tenantID], nil
}

func (f *fakeStock) ExpiringLots(_ context.Context, tenantID string, within time.Duration) ([]model.Lot, error) {
	f.window = within
	return f.expiring[tenantID], nil
}

func (f *fakeStock) ExportStockReport(context.Context, string, io.Writer) error {
	return nil
}

type tenantList []string

func (t tenantList) ListTenants(context.Context) ([]string, error) { return t, nil }

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New(Config{AuditSchedule: "every now and then"}, &fakeStock{}, tenantList{}, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}
}

func TestNew_SkipsEmptySchedules(t *testing.T) {
	s, err := New(Config{}, &fakeStock{}, tenantList{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.cron.Entries()); n != 0 {
		t.Errorf("entries = %d, want 0", n)
	}

	s, err = New(Config{AuditSchedule: "@hourly", ExpirySchedule: "0 6 * * *"}, &fakeStock{}, tenantList{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.cron.Entries()); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestRunAudit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	st := &fakeStock{findings: map[string][]model.AuditFinding{
		"shelter-1": {{
			TenantID:  "shelter-1",
			ItemID:    "dry",
			ItemName:  "Dry Food A",
			Cached:    decimal.NewFromInt(3),
			LedgerSum: decimal.NewFromInt(3),
			LotSum:    decimal.NewFromInt(5),
		}},
	}}
	s, err := New(Config{}, st, tenantList{"shelter-1", "broken", "shelter-2"}, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}

	s.RunAudit(context.Background())

	if len(st.audited) != 3 {
		t.Errorf("audited = %v, want all tenants", st.audited)
	}
	if n := logs.FilterMessage("stock drift").Len(); n != 1 {
		t.Errorf("drift logs = %d, want 1", n)
	}
	if n := logs.FilterMessage("audit failed").Len(); n != 1 {
		t.Errorf("failure logs = %d, want 1", n)
	}
}

func TestRunExpirySweep(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	expires := time.Now().Add(24 * time.Hour)
	st := &fakeStock{expiring: map[string][]model.Lot{
		"shelter-1": {{
			BaseModel: model.BaseModel{ID: "L1"},
			ItemID:    "vax",
			ExpiresAt: &expires,
			Quantity:  decimal.NewFromInt(2),
		}},
	}}
	s, err := New(Config{ExpiryWindow: 72 * time.Hour}, st, tenantList{"shelter-1"}, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}

	s.RunExpirySweep(context.Background())

	if st.window != 72*time.Hour {
		t.Errorf("window = %s", st.window)
	}
	entries := logs.FilterMessage("lot expiring soon").All()
	if len(entries) != 1 || entries[0].ContextMap()["lot_id"] != "L1" {
		t.Errorf("entries = %+v", entries)
	}
}
