package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/database"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	ledgerDto "github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/lock"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement"
	"github.com/fekuna/shelter-inventory-service/internal/procurement/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type procurementUseCase struct {
	repo   procurement.Repository
	items  item.Repository
	lots   lot.Repository
	ledger ledger.UseCase
	txm    database.TxManager
	locker lock.Locker
	logger logger.ZapLogger
	now    func() time.Time
}

func NewProcurementUseCase(
	repo procurement.Repository,
	items item.Repository,
	lots lot.Repository,
	ledgerUC ledger.UseCase,
	txm database.TxManager,
	locker lock.Locker,
	log logger.ZapLogger,
) procurement.UseCase {
	return &procurementUseCase{
		repo:   repo,
		items:  items,
		lots:   lots,
		ledger: ledgerUC,
		txm:    txm,
		locker: locker,
		logger: log,
		now:    time.Now,
	}
}

func (uc *procurementUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error) {
	// 1. Validate
	supplier := strings.TrimSpace(input.Supplier)
	if supplier == "" {
		return nil, apperr.InvalidInput("supplier is required")
	}
	if len(input.Lines) == 0 {
		return nil, apperr.InvalidInput("purchase order needs at least one line")
	}
	for i, l := range input.Lines {
		if !l.QuantityOrdered.IsPositive() {
			return nil, apperr.InvalidInput("line %d: ordered quantity must be positive", i+1)
		}
		if !model.FitsScale(l.QuantityOrdered) {
			return nil, apperr.InvalidInput("line %d: ordered quantity %s has more than %d decimal places", i+1, l.QuantityOrdered, model.QuantityScale)
		}
		if l.UnitPrice.IsNegative() {
			return nil, apperr.InvalidInput("line %d: unit price must not be negative", i+1)
		}
		it, err := uc.items.FindByID(ctx, input.TenantID, l.ItemID)
		if err != nil {
			return nil, err
		}
		if it == nil {
			return nil, apperr.NotFound("item", l.ItemID)
		}
	}

	// 2. Order number, outside the create transaction
	now := uc.now()
	seq, err := uc.repo.NextSequence(ctx, input.TenantID, now.Year())
	if err != nil {
		return nil, err
	}

	// 3. Persist order and lines
	order := &model.PurchaseOrder{
		BaseModel:          model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:           input.TenantID,
		OrderNumber:        FormatOrderNumber(now.Year(), seq),
		Supplier:           supplier,
		Status:             model.OrderStatusOrdered,
		OrderedAt:          now,
		ExpectedDeliveryAt: input.ExpectedDeliveryAt,
		Note:               input.Note,
		CreatedBy:          input.ActorID,
	}
	for _, l := range input.Lines {
		order.Lines = append(order.Lines, model.PurchaseOrderLine{
			ID:               uuid.New().String(),
			OrderID:          order.ID,
			TenantID:         input.TenantID,
			ItemID:           l.ItemID,
			QuantityOrdered:  l.QuantityOrdered,
			QuantityReceived: decimal.Zero,
			UnitPrice:        l.UnitPrice,
		})
	}
	order.TotalItems = len(order.Lines)

	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		return uc.repo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("purchase order created",
		zap.String("tenant_id", order.TenantID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", order.TotalItems),
	)
	return order, nil
}

// FormatOrderNumber renders PO-YYYY-NNNN.
func FormatOrderNumber(year, seq int) string {
	return fmt.Sprintf("PO-%d-%04d", year, seq)
}

// Receive validates every delivery before applying any, then books all of them
// as purchase transactions in one unit.
func (uc *procurementUseCase) Receive(ctx context.Context, input *dto.ReceiveInput) (*model.PurchaseOrder, error) {
	if len(input.Deliveries) == 0 {
		return nil, apperr.InvalidInput("at least one delivery is required")
	}

	// 0. Serialize with other receipts and cancellation of the same order
	release, err := uc.locker.Acquire(ctx, lock.OrderKey(input.TenantID, input.OrderID))
	if err != nil {
		return nil, err
	}
	defer release()

	// 1. Validate against the current order
	order, err := uc.GetOrder(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := validateDeliveries(order, input.Deliveries); err != nil {
		return nil, err
	}

	itemIDs := make([]string, 0, len(input.Deliveries))
	for _, d := range input.Deliveries {
		itemIDs = append(itemIDs, order.Line(d.LineID).ItemID)
	}

	// 2. Apply under the item locks
	var result *model.PurchaseOrder
	err = uc.ledger.WithItemLocks(ctx, input.TenantID, itemIDs, func(ctx context.Context, rec ledger.Recorder) error {
		o, err := uc.repo.FindByIDForUpdate(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.NotFound("purchase order", input.OrderID)
		}
		if err := validateDeliveries(o, input.Deliveries); err != nil {
			return err
		}

		for _, d := range input.Deliveries {
			line := o.Line(d.LineID)

			l, err := uc.resolveLot(ctx, line, &d)
			if err != nil {
				return err
			}

			relatedType := model.RelatedPurchaseOrder
			_, err = rec.Record(ctx, &ledgerDto.RecordTransactionInput{
				TenantID:    input.TenantID,
				ItemID:      line.ItemID,
				LotID:       &l.ID,
				Reason:      model.ReasonPurchase,
				Quantity:    d.Quantity,
				Note:        o.OrderNumber,
				RelatedType: &relatedType,
				RelatedID:   &o.ID,
				ActorID:     input.ActorID,
			})
			if err != nil {
				return err
			}

			received := line.QuantityReceived.Add(d.Quantity)
			if err := uc.repo.UpdateLineReceived(ctx, input.TenantID, line.ID, line.QuantityReceived, received); err != nil {
				return err
			}
			line.QuantityReceived = received
		}

		now := uc.now()
		o.Reconcile(now)
		o.UpdatedAt = now
		if err := uc.repo.Update(ctx, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("purchase order received",
		zap.String("tenant_id", result.TenantID),
		zap.String("order_number", result.OrderNumber),
		zap.String("status", string(result.Status)),
		zap.Int("received_items", result.ReceivedItems),
		zap.Int("total_items", result.TotalItems),
	)
	return result, nil
}

// validateDeliveries checks every delivery, summing deliveries that target the same line.
func validateDeliveries(o *model.PurchaseOrder, deliveries []dto.DeliveryInput) error {
	if o.Status == model.OrderStatusCancelled {
		return apperr.New(apperr.KindInvalidState, "purchase order %s is cancelled", o.OrderNumber)
	}

	pending := make(map[string]decimal.Decimal, len(deliveries))
	for _, d := range deliveries {
		line := o.Line(d.LineID)
		if line == nil {
			return apperr.NotFound("purchase order line", d.LineID)
		}
		if !d.Quantity.IsPositive() {
			return apperr.InvalidInput("delivery for line %s: quantity must be positive", d.LineID)
		}
		if !model.FitsScale(d.Quantity) {
			return apperr.InvalidInput("delivery for line %s: quantity %s has more than %d decimal places", d.LineID, d.Quantity, model.QuantityScale)
		}
		if d.CostPerUnit != nil && d.CostPerUnit.IsNegative() {
			return apperr.InvalidInput("delivery for line %s: cost per unit must not be negative", d.LineID)
		}

		total := pending[d.LineID].Add(d.Quantity)
		if line.QuantityReceived.Add(total).GreaterThan(line.QuantityOrdered) {
			return apperr.New(apperr.KindOverReceipt,
				"line %s: receiving %s would exceed ordered %s (already received %s)",
				d.LineID, total, line.QuantityOrdered, line.QuantityReceived)
		}
		pending[d.LineID] = total
	}
	return nil
}

// resolveLot reuses the item's lot with the delivered lot number, backfilling
// a missing expiry, or creates a new lot.
func (uc *procurementUseCase) resolveLot(ctx context.Context, line *model.PurchaseOrderLine, d *dto.DeliveryInput) (*model.Lot, error) {
	if d.LotNumber != nil && strings.TrimSpace(*d.LotNumber) != "" {
		l, err := uc.lots.FindByNumber(ctx, line.TenantID, line.ItemID, strings.TrimSpace(*d.LotNumber))
		if err != nil {
			return nil, err
		}
		if l != nil {
			if l.ExpiresAt == nil && d.ExpiresAt != nil {
				l.ExpiresAt = d.ExpiresAt
				l.UpdatedAt = uc.now()
				if err := uc.lots.Update(ctx, l); err != nil {
					return nil, err
				}
			}
			return l, nil
		}
	}

	cost := d.CostPerUnit
	if cost == nil {
		price := line.UnitPrice
		cost = &price
	}
	var number *string
	if d.LotNumber != nil && strings.TrimSpace(*d.LotNumber) != "" {
		n := strings.TrimSpace(*d.LotNumber)
		number = &n
	}

	now := uc.now()
	l := &model.Lot{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:    line.TenantID,
		ItemID:      line.ItemID,
		LotNumber:   number,
		ExpiresAt:   d.ExpiresAt,
		Quantity:    decimal.Zero,
		CostPerUnit: cost,
	}
	if err := uc.lots.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Cancel is idempotent on cancelled orders and refuses once anything was received.
func (uc *procurementUseCase) Cancel(ctx context.Context, tenantID, orderID string) (*model.PurchaseOrder, error) {
	release, err := uc.locker.Acquire(ctx, lock.OrderKey(tenantID, orderID))
	if err != nil {
		return nil, err
	}
	defer release()

	var result *model.PurchaseOrder
	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.repo.FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.NotFound("purchase order", orderID)
		}
		if o.Status == model.OrderStatusCancelled {
			result = o
			return nil
		}
		if o.AnyReceived() {
			return apperr.New(apperr.KindHasReceivedItems, "purchase order %s already has received items", o.OrderNumber)
		}

		now := uc.now()
		o.Status = model.OrderStatusCancelled
		o.CancelledAt = &now
		o.UpdatedAt = now
		if err := uc.repo.Update(ctx, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *procurementUseCase) OnTheWay(ctx context.Context, tenantID, itemID string) (*model.OnTheWay, error) {
	orders, err := uc.repo.ListOutstanding(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	out := &model.OnTheWay{ItemID: itemID, Quantity: decimal.Zero, Orders: orders}
	for _, o := range orders {
		out.Quantity = out.Quantity.Add(o.Outstanding)
	}
	return out, nil
}

func (uc *procurementUseCase) GetOrder(ctx context.Context, tenantID, id string) (*model.PurchaseOrder, error) {
	o, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("purchase order", id)
	}
	return o, nil
}

func (uc *procurementUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	return uc.repo.FindAll(ctx, filters)
}
