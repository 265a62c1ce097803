package event

import "context"

type Repository interface {
	Append(ctx context.Context, e *Event) error
	// ListAfter returns up to limit events with seq > after, ascending.
	ListAfter(ctx context.Context, after uint64, limit int) ([]Event, error)
}
