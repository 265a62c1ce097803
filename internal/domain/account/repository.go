package account

import "context"

type Repository interface {
	// GetOrCreateForUpdate returns the identity's account, creating a
	// zero-balance row if none exists, locked for the enclosing
	// transaction.
	GetOrCreateForUpdate(ctx context.Context, identity string) (*Account, error)
	Get(ctx context.Context, identity string) (*Account, error)
	Save(ctx context.Context, a *Account) error
}
