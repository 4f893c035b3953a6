package broker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type capturePublisher struct {
	key   string
	value []byte
}

func (c *capturePublisher) Publish(_ context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.key, c.value = key, b
	return nil
}

func TestLowStockPublisher(t *testing.T) {
	capture := &capturePublisher{}
	p := NewLowStockPublisher(capture)

	err := p.PublishLowStock(context.Background(), &model.LowStockEvent{
		TenantID:         "t1",
		ItemID:           "i1",
		ItemName:         "Dry Food A",
		Category:         model.CategoryFood,
		QuantityCurrent:  decimal.RequireFromString("5"),
		ReorderThreshold: decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("PublishLowStock() error = %v", err)
	}
	if capture.key != "t1:i1" {
		t.Errorf("key = %q, want t1:i1", capture.key)
	}

	var got Event[model.LowStockEvent]
	if err := json.Unmarshal(capture.value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.EventType != EventTypeLowStock || got.EventID == "" {
		t.Errorf("envelope = %+v", got)
	}
	if !got.Payload.QuantityCurrent.Equal(decimal.NewFromInt(5)) || got.Payload.ItemName != "Dry Food A" {
		t.Errorf("payload = %+v", got.Payload)
	}
}
