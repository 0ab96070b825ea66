package persistence

import (
	"context"

	"github.com/ledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// withTx binds tx to ctx so repositories called with the returned
// context take part in the same transaction.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFromContext returns the transaction bound to ctx, if any.
func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// conn returns the transaction bound to ctx or the fallback pool, scoped to ctx.
func conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// inTransaction runs fn inside a transaction. An outer transaction already
// bound to ctx is reused rather than nested.
func inTransaction(ctx context.Context, db *gorm.DB, fn func(txCtx context.Context, tx *gorm.DB) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(ctx, tx.WithContext(ctx))
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx), tx)
	})
}

// TxManager exposes transactions to the application layer without
// leaking gorm types.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager over db
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTransaction runs fn in a transaction carried by the context it receives.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return inTransaction(ctx, m.db, func(txCtx context.Context, _ *gorm.DB) error {
		return fn(txCtx)
	})
}

var _ shared.TransactionScope = (*TxManager)(nil)
