package mysql

import (
	"context"
	"errors"

	acct "peerfund-core/internal/domain/account"

	"gorm.io/gorm"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) GetOrCreateForUpdate(ctx context.Context, identity string) (*acct.Account, error) {
	var out acct.Account
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("identity = ?", identity).
		First(&out)
	if res.Error == nil {
		return &out, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, res.Error
	}
	out = acct.Account{Identity: identity}
	if err := r.db.WithContext(ctx).Create(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AccountRepository) Get(ctx context.Context, identity string) (*acct.Account, error) {
	var out acct.Account
	res := r.db.WithContext(ctx).Where("identity = ?", identity).First(&out)
	return &out, res.Error
}

func (r *AccountRepository) Save(ctx context.Context, a *acct.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}
