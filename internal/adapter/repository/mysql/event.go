package mysql

import (
	"context"

	evt "peerfund-core/internal/domain/event"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, e *evt.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListAfter(ctx context.Context, after uint64, limit int) ([]evt.Event, error) {
	var out []evt.Event
	res := r.db.WithContext(ctx).
		Where("seq > ?", after).
		Order("seq ASC").
		Limit(limit).
		Find(&out)
	return out, res.Error
}
