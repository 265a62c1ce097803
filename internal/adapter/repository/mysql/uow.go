package mysql

import (
	"context"

	"peerfund-core/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Offers:    &OfferRepository{db: tx},
			Requests:  &RequestRepository{db: tx},
			Loans:     &LoanRepository{db: tx},
			Documents: &DocumentRepository{db: tx},
			Accounts:  &AccountRepository{db: tx},
			Events:    &EventRepository{db: tx},
		}
		return fn(r)
	})
}
