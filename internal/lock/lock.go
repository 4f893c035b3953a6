// Package lock provides per-key exclusive locks used to serialize
// read-modify-write cycles on a single item or purchase order.
package lock

import (
	"context"
	"fmt"
)

type Locker interface {
	// Acquire blocks until key is held or ctx is done. release must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func ItemKey(tenantID, itemID string) string {
	return fmt.Sprintf("lock:inventory:%s:item:%s", tenantID, itemID)
}

func OrderKey(tenantID, orderID string) string {
	return fmt.Sprintf("lock:inventory:%s:po:%s", tenantID, orderID)
}
