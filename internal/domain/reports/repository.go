package reports

import (
	"context"
	"time"

	"family-finance-go/internal/domain/transactions"
)

// Repository is read only. Every range is [from, to).
type Repository interface {
	Totals(ctx context.Context, userIDs []string, from, to time.Time) (transactions.Totals, error)
	CategoryTotals(ctx context.Context, userIDs []string, from, to time.Time) ([]CategoryTotal, error)
	// TopExpenses returns at most limit expenses, largest first. Equal amounts
	// keep store insertion order.
	TopExpenses(ctx context.Context, userIDs []string, from, to time.Time, limit int) ([]transactions.Transaction, error)
}
