package ledger

import (
	"context"

	"github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
)

// Recorder posts transactions inside a unit opened by WithItemLocks.
// It only accepts items whose locks the unit holds.
type Recorder interface {
	Record(ctx context.Context, input *dto.RecordTransactionInput) (*model.Transaction, error)
}

type UnitFunc func(ctx context.Context, rec Recorder) error

type UseCase interface {
	RecordTransaction(ctx context.Context, input *dto.RecordTransactionInput) (*model.Transaction, error)
	// WithItemLocks runs fn holding the locks of itemIDs and inside one database
	// transaction. fn must post through rec and must not call RecordTransaction.
	// fn may run more than once when a concurrent write is detected.
	WithItemLocks(ctx context.Context, tenantID string, itemIDs []string, fn UnitFunc) error
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.Transaction, int, error)
}
