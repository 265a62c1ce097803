package mysql

import (
	"context"

	mkt "peerfund-core/internal/domain/marketplace"

	"gorm.io/gorm"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

func (r *OfferRepository) Create(ctx context.Context, o *mkt.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) Save(ctx context.Context, o *mkt.Offer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OfferRepository) GetByKey(ctx context.Context, offerKey string) (*mkt.Offer, error) {
	var out mkt.Offer
	res := r.db.WithContext(ctx).Where("offer_key = ?", offerKey).First(&out)
	return &out, res.Error
}

// GetByKeyForUpdate locks the offer row so a concurrent match serializes
// behind this transaction.
func (r *OfferRepository) GetByKeyForUpdate(ctx context.Context, offerKey string) (*mkt.Offer, error) {
	var out mkt.Offer
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("offer_key = ?", offerKey).
		First(&out)
	return &out, res.Error
}

func (r *OfferRepository) ListByLender(ctx context.Context, lenderID string) ([]mkt.Offer, error) {
	var out []mkt.Offer
	res := r.db.WithContext(ctx).
		Where("lender_id = ?", lenderID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
