package store

import "context"

// RunInTenant runs fn in a transaction scoped to tenantID
func RunInTenant(ctx context.Context, tx TxRunner, tenantID string, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithTenant(ctx, tenantID)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
