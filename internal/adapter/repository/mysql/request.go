package mysql

import (
	"context"

	mkt "peerfund-core/internal/domain/marketplace"

	"gorm.io/gorm"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *mkt.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) Save(ctx context.Context, req *mkt.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *RequestRepository) GetByKey(ctx context.Context, requestKey string) (*mkt.Request, error) {
	var out mkt.Request
	res := r.db.WithContext(ctx).Where("request_key = ?", requestKey).First(&out)
	return &out, res.Error
}

func (r *RequestRepository) GetByKeyForUpdate(ctx context.Context, requestKey string) (*mkt.Request, error) {
	var out mkt.Request
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("request_key = ?", requestKey).
		First(&out)
	return &out, res.Error
}

func (r *RequestRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]mkt.Request, error) {
	var out []mkt.Request
	res := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
