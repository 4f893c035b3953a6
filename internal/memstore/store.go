// Package memstore keeps the inventory relations in process memory. It backs
// the usecase tests and the memory storage driver.
//
// Transactions are serialized: WithinTx holds a store-wide writer lock and
// restores a snapshot when fn fails. Writes outside a transaction take the
// same lock. Reads never block on a running transaction and may observe its
// uncommitted writes.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/fekuna/shelter-inventory-service/internal/database"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement"
)

type txKey struct{}

type seqKey struct {
	tenantID string
	year     int
}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	items     map[string]model.Item
	lots      map[string]model.Lot
	txs       []model.Transaction
	orders    map[string]model.PurchaseOrder
	sequences map[seqKey]int
}

func New() *Store {
	return &Store{
		items:     make(map[string]model.Item),
		lots:      make(map[string]model.Lot),
		orders:    make(map[string]model.PurchaseOrder),
		sequences: make(map[seqKey]int),
	}
}

func (s *Store) Items() *ItemRepository                   { return &ItemRepository{s: s} }
func (s *Store) Lots() *LotRepository                     { return &LotRepository{s: s} }
func (s *Store) Ledger() *LedgerRepository                { return &LedgerRepository{s: s} }
func (s *Store) PurchaseOrders() *PurchaseOrderRepository { return &PurchaseOrderRepository{s: s} }
func (s *Store) TxManager() *TxManager                    { return &TxManager{s: s} }

type TxManager struct {
	s *Store
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.s
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// write runs f with exclusive access to the maps, joining ctx's transaction if any.
func (s *Store) write(ctx context.Context, f func() error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return f()
}

func (s *Store) read(f func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f()
}

type snapshot struct {
	items  map[string]model.Item
	lots   map[string]model.Lot
	txs    int
	orders map[string]model.PurchaseOrder
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make(map[string]model.PurchaseOrder, len(s.orders))
	for id, o := range s.orders {
		orders[id] = cloneOrder(o)
	}
	return snapshot{
		items:  cloneMap(s.items),
		lots:   cloneMap(s.lots),
		txs:    len(s.txs),
		orders: orders,
	}
}

// restore rolls back to snap. Sequences are kept so order numbers never repeat.
func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = snap.items
	s.lots = snap.lots
	s.txs = s.txs[:snap.txs]
	s.orders = snap.orders
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneOrder(o model.PurchaseOrder) model.PurchaseOrder {
	o.Lines = slices.Clone(o.Lines)
	return o
}

func paginate[T any](rows []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return rows
	}
	start := (max(page, 1) - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	return rows[start:min(start+pageSize, len(rows))]
}

var (
	_ item.Repository        = (*ItemRepository)(nil)
	_ lot.Repository         = (*LotRepository)(nil)
	_ ledger.Repository      = (*LedgerRepository)(nil)
	_ procurement.Repository = (*PurchaseOrderRepository)(nil)
	_ database.TxManager     = (*TxManager)(nil)
)
