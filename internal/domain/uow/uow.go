package uow

import (
	"context"

	"peerfund-core/internal/domain/account"
	"peerfund-core/internal/domain/agreement"
	"peerfund-core/internal/domain/document"
	"peerfund-core/internal/domain/event"
	"peerfund-core/internal/domain/marketplace"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Offers    marketplace.OfferRepository
	Requests  marketplace.RequestRepository
	Loans     agreement.Repository
	Documents document.Repository
	Accounts  account.Repository
	Events    event.Repository
}

// UnitOfWork runs fn inside a single transaction: every read-validate-
// write step commits together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
