package account

import (
	"context"
	"errors"
	"time"

	"peerfund-core/internal/domain/errs"
	"peerfund-core/internal/domain/event"
	"peerfund-core/internal/domain/uow"

	"gorm.io/gorm"
)

type AccountDTO struct {
	Identity  string    `json:"identity"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

// Deposit tops up the caller's own escrow balance. External money
// movement (bank rails) is out of scope; this records the credited
// amount the funding and repayment flows draw from.
func (u *Usecase) Deposit(ctx context.Context, callerID, identity string, amount int64) (*AccountDTO, error) {
	if callerID != identity {
		return nil, errs.ErrUnauthorized
	}
	if amount <= 0 {
		return nil, errs.ErrInvalidRange
	}
	var dto *AccountDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.GetOrCreateForUpdate(ctx, identity)
		if err != nil {
			return err
		}
		a.Balance += amount
		if err := r.Accounts.Save(ctx, a); err != nil {
			return err
		}
		ev := event.New(event.AccountDeposited, identity, callerID, map[string]any{
			"amount":  amount,
			"balance": a.Balance,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = &AccountDTO{Identity: a.Identity, Balance: a.Balance, UpdatedAt: a.UpdatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, identity string) (*AccountDTO, error) {
	var dto *AccountDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.Get(ctx, identity)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		dto = &AccountDTO{Identity: a.Identity, Balance: a.Balance, UpdatedAt: a.UpdatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
