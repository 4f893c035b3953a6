package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/consumption"
	"github.com/fekuna/shelter-inventory-service/internal/consumption/dto"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/metrics"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const EventTypeFeedingRecorded = "FeedingRecorded"

// Processing results, also used as metric labels.
const (
	ResultDeducted = "deducted"
	ResultPartial  = "partial"
	ResultFailed   = "failed"
	ResultSkipped  = "skipped"
	ResultInvalid  = "invalid"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// FeedingListener deducts food stock for feeding events. Deduction failures
// are logged as warnings; the feeding record itself is never affected.
type FeedingListener struct {
	consumer MessageReader
	uc       consumption.UseCase
	metrics  *metrics.Metrics
	logger   logger.ZapLogger
}

func NewFeedingListener(consumer MessageReader, uc consumption.UseCase, m *metrics.Metrics, logger logger.ZapLogger) *FeedingListener {
	return &FeedingListener{
		consumer: consumer,
		uc:       uc,
		metrics:  m,
		logger:   logger,
	}
}

func (l *FeedingListener) Start(ctx context.Context) {
	l.logger.Info("Starting feeding Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping feeding Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.metrics.FeedingEvent(l.processMessage(ctx, msg.Value))
		}
	}
}

type FeedingRecordedEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   FeedingPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// FeedingPayload carries an amount already converted to the item's unit.
type FeedingPayload struct {
	TenantID     string          `json:"tenant_id"`
	FeedingLogID string          `json:"feeding_log_id"`
	ItemID       string          `json:"item_id,omitempty"`
	ItemName     string          `json:"item_name"`
	Amount       decimal.Decimal `json:"amount"`
	ActorID      string          `json:"actor_id"`
}

func (l *FeedingListener) processMessage(ctx context.Context, value []byte) string {
	var event FeedingRecordedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return ResultInvalid
	}

	if event.EventType != EventTypeFeedingRecorded {
		return ResultSkipped
	}

	p := event.Payload
	relatedType := model.RelatedFeedingLog
	food := model.CategoryFood
	actor := p.ActorID
	if actor == "" {
		actor = "system"
	}

	d, err := l.uc.DeductForConsumption(ctx, &dto.DeductInput{
		TenantID:    p.TenantID,
		ItemID:      p.ItemID,
		ItemName:    p.ItemName,
		Category:    &food,
		Amount:      p.Amount,
		RelatedType: &relatedType,
		RelatedID:   &p.FeedingLogID,
		ActorID:     actor,
		Note:        "feeding " + p.FeedingLogID,
	})
	if err != nil {
		l.logger.Warn("Failed to deduct food stock for feeding",
			zap.String("feeding_log_id", p.FeedingLogID),
			zap.String("tenant_id", p.TenantID),
			zap.String("item_name", p.ItemName),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err),
		)
		return ResultFailed
	}

	if d.Partial() {
		return ResultPartial
	}
	return ResultDeducted
}
