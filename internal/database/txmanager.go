package database

import "context"

// TxManager runs a unit of work atomically. Repositories called with the
// context handed to fn take part in the same transaction; nested calls
// join the outer one.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
