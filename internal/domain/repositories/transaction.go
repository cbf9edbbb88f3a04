package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a unit of work atomically. Repositories called with
// the ctx handed to fn participate in the same transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
