package marketplace

import "context"

type OfferRepository interface {
	Create(ctx context.Context, o *Offer) error
	Save(ctx context.Context, o *Offer) error
	GetByKey(ctx context.Context, offerKey string) (*Offer, error)
	// GetByKeyForUpdate locks the row for the duration of the enclosing
	// transaction so concurrent matches serialize on it.
	GetByKeyForUpdate(ctx context.Context, offerKey string) (*Offer, error)
	ListByLender(ctx context.Context, lenderID string) ([]Offer, error)
}

type RequestRepository interface {
	Create(ctx context.Context, r *Request) error
	Save(ctx context.Context, r *Request) error
	GetByKey(ctx context.Context, requestKey string) (*Request, error)
	GetByKeyForUpdate(ctx context.Context, requestKey string) (*Request, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]Request, error)
}
