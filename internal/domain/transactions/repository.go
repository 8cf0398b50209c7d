package transactions

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	List(ctx context.Context, filter ListFilter) ([]Transaction, int64, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	Create(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id string) (bool, error)
	// SumByType sums amounts for userID with date in [from, to).
	SumByType(ctx context.Context, userID string, from, to time.Time) (Totals, error)
}
