package ports

import "context"

// TxManager scopes session and event writes for one tick or build into a
// single transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
