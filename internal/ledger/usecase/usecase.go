package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/auth"
	"github.com/fekuna/shelter-inventory-service/internal/database"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	"github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/lock"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	"github.com/fekuna/shelter-inventory-service/internal/metrics"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultMaxAttempts = 3

type Config struct {
	// MaxAttempts bounds how often a unit runs when a concurrent write is detected.
	MaxAttempts int
}

type ledgerUseCase struct {
	items       item.Repository
	lots        lot.Repository
	repo        ledger.Repository
	txm         database.TxManager
	locker      lock.Locker
	publisher   ledger.EventPublisher
	metrics     *metrics.Metrics
	logger      logger.ZapLogger
	maxAttempts int
	now         func() time.Time
}

// NewLedgerUseCase builds the ledger. publisher and m may be nil.
func NewLedgerUseCase(
	items item.Repository,
	lots lot.Repository,
	repo ledger.Repository,
	txm database.TxManager,
	locker lock.Locker,
	publisher ledger.EventPublisher,
	m *metrics.Metrics,
	log logger.ZapLogger,
	cfg Config,
) ledger.UseCase {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	return &ledgerUseCase{
		items:       items,
		lots:        lots,
		repo:        repo,
		txm:         txm,
		locker:      locker,
		publisher:   publisher,
		metrics:     m,
		logger:      log,
		maxAttempts: attempts,
		now:         time.Now,
	}
}

// RecordTransaction posts one transaction in its own unit. A missing tenant
// or actor is taken from the request context.
func (uc *ledgerUseCase) RecordTransaction(ctx context.Context, input *dto.RecordTransactionInput) (*model.Transaction, error) {
	in := *input
	if in.TenantID == "" {
		in.TenantID = auth.GetTenantID(ctx)
	}
	input = &in
	if input.Reason.IsZero() {
		uc.metrics.Rejection("record_transaction", string(apperr.KindInvalidReason))
		return nil, apperr.New(apperr.KindInvalidReason, "transaction reason is required")
	}

	var out *model.Transaction
	err := uc.WithItemLocks(ctx, input.TenantID, []string{input.ItemID}, func(ctx context.Context, rec ledger.Recorder) error {
		t, err := rec.Record(ctx, input)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *ledgerUseCase) WithItemLocks(ctx context.Context, tenantID string, itemIDs []string, fn ledger.UnitFunc) error {
	ids := slices.Clone(itemIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	// 1. Acquire item locks in key order
	start := time.Now()
	for _, id := range ids {
		release, err := uc.locker.Acquire(ctx, lock.ItemKey(tenantID, id))
		if err != nil {
			uc.metrics.Rejection("lock", string(apperr.KindOf(err)))
			return err
		}
		defer release()
	}
	uc.metrics.LockWait(time.Since(start).Seconds())

	// Once the locks are held the unit runs to completion.
	ctx = context.WithoutCancel(ctx)

	for attempt := 1; ; attempt++ {
		rec := newRecorder(uc, tenantID, ids)

		// 2. Run the unit inside one database transaction
		err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
			return fn(ctx, rec)
		})
		if err == nil {
			// 3. Post-commit side effects
			uc.afterCommit(ctx, rec.posted)
			return nil
		}

		kind := apperr.KindOf(err)
		if kind != apperr.KindConflict || attempt >= uc.maxAttempts {
			if kind != "" {
				uc.metrics.Rejection("ledger", string(kind))
			}
			return err
		}

		uc.metrics.ConflictRetry()
		uc.logger.Warn("ledger unit hit a concurrent write, retrying",
			zap.String("tenant_id", tenantID),
			zap.Strings("item_ids", ids),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}

func (uc *ledgerUseCase) ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.Transaction, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *ledgerUseCase) afterCommit(ctx context.Context, posted []postedTransaction) {
	for _, p := range posted {
		uc.metrics.Transaction(p.tx.Reason.String(), string(p.tx.Direction))

		if p.tx.Direction == model.DirectionIn {
			continue
		}
		crossed := p.tx.QuantityBefore.GreaterThanOrEqual(p.item.ReorderThreshold) &&
			p.tx.QuantityAfter.LessThan(p.item.ReorderThreshold)
		if !crossed {
			continue
		}

		uc.metrics.LowStock()
		uc.logger.Info("item dropped below reorder threshold",
			zap.String("tenant_id", p.tx.TenantID),
			zap.String("item_id", p.tx.ItemID),
			zap.String("quantity_current", p.tx.QuantityAfter.String()),
		)
		if uc.publisher == nil {
			continue
		}

		event := &model.LowStockEvent{
			TenantID:         p.tx.TenantID,
			ItemID:           p.tx.ItemID,
			ItemName:         p.item.Name,
			Category:         p.item.Category,
			QuantityCurrent:  p.tx.QuantityAfter,
			ReorderThreshold: p.item.ReorderThreshold,
			TransactionID:    p.tx.ID,
		}
		if err := uc.publisher.PublishLowStock(ctx, event); err != nil {
			uc.logger.Warn("failed to publish low stock event",
				zap.String("item_id", p.tx.ItemID),
				zap.Error(err),
			)
		}
	}
}

type postedTransaction struct {
	tx   *model.Transaction
	item model.Item
}

type recorder struct {
	uc       *ledgerUseCase
	tenantID string
	locked   map[string]struct{}
	posted   []postedTransaction
}

func newRecorder(uc *ledgerUseCase, tenantID string, itemIDs []string) *recorder {
	locked := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		locked[id] = struct{}{}
	}
	return &recorder{uc: uc, tenantID: tenantID, locked: locked}
}

func (r *recorder) Record(ctx context.Context, input *dto.RecordTransactionInput) (*model.Transaction, error) {
	uc := r.uc

	if _, ok := r.locked[input.ItemID]; !ok || input.TenantID != r.tenantID {
		return nil, apperr.InvalidInput("item %s is not locked by this unit", input.ItemID)
	}

	// 1. Reason carries its direction
	if input.Reason.IsZero() {
		return nil, apperr.New(apperr.KindInvalidReason, "transaction reason is required")
	}
	if input.Quantity.IsZero() {
		return nil, apperr.InvalidInput("transaction quantity must not be zero")
	}
	if input.Quantity.IsNegative() && input.Reason.Direction() != model.DirectionAdjust {
		return nil, apperr.InvalidInput("%s quantity must be positive, got %s", input.Reason, input.Quantity)
	}
	if !model.FitsScale(input.Quantity) {
		return nil, apperr.InvalidInput("transaction quantity %s has more than %d decimal places", input.Quantity, model.QuantityScale)
	}

	// 2. Signed delta
	delta := input.Reason.Signed(input.Quantity)
	actor := input.ActorID
	if actor == "" {
		actor = auth.GetActorID(ctx)
	}

	// 3. Load item and check the new total
	it, err := uc.items.FindByIDForUpdate(ctx, input.TenantID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.NotFound("item", input.ItemID)
	}

	before := it.QuantityCurrent
	after := before.Add(delta)
	if after.IsNegative() {
		return nil, apperr.New(apperr.KindInsufficientStock,
			"insufficient stock for item %s: have %s, need %s", it.ID, before, delta.Neg())
	}

	var l *model.Lot
	if input.LotID != nil {
		l, err = uc.lots.FindByIDForUpdate(ctx, input.TenantID, *input.LotID)
		if err != nil {
			return nil, err
		}
		if l == nil || l.ItemID != it.ID {
			return nil, apperr.NotFound("lot", *input.LotID)
		}
	}

	// 4. Append the immutable row
	t := &model.Transaction{
		ID:             uuid.New().String(),
		TenantID:       input.TenantID,
		ItemID:         it.ID,
		LotID:          input.LotID,
		Direction:      input.Reason.Direction(),
		Reason:         input.Reason,
		Quantity:       delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Note:           input.Note,
		RelatedType:    input.RelatedType,
		RelatedID:      input.RelatedID,
		ActorID:        actor,
		CreatedAt:      uc.now(),
	}
	if err := uc.repo.Insert(ctx, t); err != nil {
		return nil, err
	}

	// 5. Cached aggregate
	if err := uc.items.UpdateQuantity(ctx, it.TenantID, it.ID, before, after); err != nil {
		return nil, err
	}

	// 6. Lot quantity, floored at zero
	if l != nil {
		next := l.Quantity.Add(delta)
		if next.IsNegative() {
			uc.logger.Warn("lot quantity clamped at zero",
				zap.String("lot_id", l.ID),
				zap.String("quantity", l.Quantity.String()),
				zap.String("delta", delta.String()),
			)
			next = decimal.Zero
		}
		if err := uc.lots.UpdateQuantity(ctx, l.TenantID, l.ID, l.Quantity, next); err != nil {
			return nil, err
		}
	}

	snapshot := *it
	snapshot.QuantityCurrent = after
	r.posted = append(r.posted, postedTransaction{tx: t, item: snapshot})
	return t, nil
}
