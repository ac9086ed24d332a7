package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx runs fn inside a transaction carried by the context passed to fn.
	// The transaction commits when fn returns nil and rolls back otherwise.
	// A pgx transaction is bound to one connection: fn must not issue
	// statements concurrently.
	ExecTx(ctx context.Context, fn TxFn) error
}
