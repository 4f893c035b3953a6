package broker

import (
	"context"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/google/uuid"
)

const EventTypeLowStock = "LowStock"

// Event is the envelope shared by every message on the inventory topics.
type Event[T any] struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// LowStockPublisher emits LowStock events keyed by tenant and item.
type LowStockPublisher struct {
	producer Publisher
}

func NewLowStockPublisher(producer Publisher) *LowStockPublisher {
	return &LowStockPublisher{producer: producer}
}

func (p *LowStockPublisher) PublishLowStock(ctx context.Context, event *model.LowStockEvent) error {
	return p.producer.Publish(ctx, event.TenantID+":"+event.ItemID, Event[*model.LowStockEvent]{
		EventID:   uuid.New().String(),
		EventType: EventTypeLowStock,
		Payload:   event,
		Timestamp: time.Now().UTC(),
	})
}
