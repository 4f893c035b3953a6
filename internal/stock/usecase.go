package stock

import (
	"context"
	"io"
	"time"

	itemDto "github.com/fekuna/shelter-inventory-service/internal/item/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/stock/dto"
)

// UseCase is the read side. Nothing here takes item locks.
type UseCase interface {
	ListStock(ctx context.Context, filters *itemDto.ItemFilters) ([]model.Item, int, error)
	GetStock(ctx context.Context, tenantID, itemID string) (*model.ItemStock, error)
	ListTransactions(ctx context.Context, filters *dto.HistoryFilters) ([]model.Transaction, int, error)
	// Audit reports items whose cached quantity disagrees with the ledger or lot sums.
	Audit(ctx context.Context, tenantID string) ([]model.AuditFinding, error)
	ExpiringLots(ctx context.Context, tenantID string, within time.Duration) ([]model.Lot, error)
	ExportStockReport(ctx context.Context, tenantID string, w io.Writer) error
}
