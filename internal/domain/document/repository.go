package document

import "context"

type Repository interface {
	Create(ctx context.Context, d *Document) error
	Save(ctx context.Context, d *Document) error
	GetByKey(ctx context.Context, documentKey string) (*Document, error)
	GetByKeyForUpdate(ctx context.Context, documentKey string) (*Document, error)
	// ListByOwner returns the owner's documents in submission order.
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)

	AddVerifier(ctx context.Context, v *Verifier) error
	RemoveVerifier(ctx context.Context, identity string) error
	IsVerifier(ctx context.Context, identity string) (bool, error)
	ListVerifiers(ctx context.Context) ([]Verifier, error)
}
