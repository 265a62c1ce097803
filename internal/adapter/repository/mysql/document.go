package mysql

import (
	"context"

	doc "peerfund-core/internal/domain/document"

	"gorm.io/gorm"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *doc.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) Save(ctx context.Context, d *doc.Document) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DocumentRepository) GetByKey(ctx context.Context, documentKey string) (*doc.Document, error) {
	var out doc.Document
	res := r.db.WithContext(ctx).Where("document_key = ?", documentKey).First(&out)
	return &out, res.Error
}

func (r *DocumentRepository) GetByKeyForUpdate(ctx context.Context, documentKey string) (*doc.Document, error) {
	var out doc.Document
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("document_key = ?", documentKey).
		First(&out)
	return &out, res.Error
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]doc.Document, error) {
	var out []doc.Document
	res := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) AddVerifier(ctx context.Context, v *doc.Verifier) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *DocumentRepository) RemoveVerifier(ctx context.Context, identity string) error {
	res := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		Delete(&doc.Verifier{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DocumentRepository) IsVerifier(ctx context.Context, identity string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&doc.Verifier{}).
		Where("identity = ?", identity).
		Count(&n)
	return n > 0, res.Error
}

func (r *DocumentRepository) ListVerifiers(ctx context.Context) ([]doc.Verifier, error) {
	var out []doc.Verifier
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}
