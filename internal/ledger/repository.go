package ledger

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

// Repository is append-only. Transactions are never updated or deleted.
type Repository interface {
	Insert(ctx context.Context, tx *model.Transaction) error
	// FindAll returns transactions newest first with the total match count.
	FindAll(ctx context.Context, filters *dto.TransactionFilters) ([]model.Transaction, int, error)
	SumByItem(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error)
}

// EventPublisher receives low-stock notifications after commit.
type EventPublisher interface {
	PublishLowStock(ctx context.Context, event *model.LowStockEvent) error
}
