package shared

import "context"

// TransactionScope runs work inside one database transaction.
// Repositories called with the context passed to fn join that transaction;
// returning an error from fn rolls everything back.
type TransactionScope interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
