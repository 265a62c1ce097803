package event

import (
	"context"

	evt "peerfund-core/internal/domain/event"
	"peerfund-core/internal/domain/uow"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

// List returns the durable feed after the given cursor, ascending by
// sequence. Consumers re-poll with the last seq they processed.
func (u *Usecase) List(ctx context.Context, after uint64, limit int) ([]evt.Event, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	var out []evt.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rows, err := r.Events.ListAfter(ctx, after, limit)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
