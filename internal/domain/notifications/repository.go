package notifications

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockDedup serialises DispatchOnce calls for the same user until the
	// surrounding transaction ends.
	LockDedup(ctx context.Context, userID string) error
	// ExistsInWindow reports whether userID has a notification of any of
	// types with created_at in [from, to).
	ExistsInWindow(ctx context.Context, userID string, types []Type, from, to time.Time) (bool, error)
	Create(ctx context.Context, items []Notification) error
	List(ctx context.Context, userID string, filter ListFilter) ([]Notification, int64, error)
	GetByID(ctx context.Context, id string) (*Notification, error)
	SetRead(ctx context.Context, id string, isRead bool) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}
