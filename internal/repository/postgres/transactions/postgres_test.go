package transactions

import (
	"context"
	"testing"
	"time"

	"family-finance-go/internal/db"
	txdomain "family-finance-go/internal/domain/transactions"
	"family-finance-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *PostgresRepository {
	t.Helper()
	gormDB, err := db.NewSQLite(db.MemoryDSN, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewPostgres(gormDB)
}

func seed(t *testing.T, repo *PostgresRepository, items ...txdomain.Transaction) {
	t.Helper()
	for i := range items {
		require.NoError(t, repo.Create(context.Background(), &items[i]))
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	day := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	seed(t, repo,
		txdomain.Transaction{ID: "t1", UserID: "u1", Amount: 10, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day},
		txdomain.Transaction{ID: "t2", UserID: "u1", Amount: 20, Type: txdomain.TypeExpense, Category: txdomain.CategoryHousing, Date: day.AddDate(0, 0, 1)},
		txdomain.Transaction{ID: "t3", UserID: "u1", Amount: 900, Type: txdomain.TypeIncome, Category: txdomain.CategorySalary, Date: day.AddDate(0, 0, 2)},
		txdomain.Transaction{ID: "t4", UserID: "u2", Amount: 5, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day},
	)

	expense := txdomain.TypeExpense
	items, total, err := repo.List(ctx, txdomain.ListFilter{UserIDs: []string{"u1"}, Type: &expense})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "t2", items[0].ID)

	food := txdomain.CategoryFood
	items, total, err = repo.List(ctx, txdomain.ListFilter{UserIDs: []string{"u1", "u2"}, Category: &food, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)

	from, to := day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)
	items, _, err = repo.List(ctx, txdomain.ListFilter{UserIDs: []string{"u1"}, From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSumByTypeUsesHalfOpenRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	june := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	july := june.AddDate(0, 1, 0)

	seed(t, repo,
		txdomain.Transaction{ID: "t1", UserID: "u1", Amount: 1000, Type: txdomain.TypeIncome, Category: txdomain.CategorySalary, Date: june},
		txdomain.Transaction{ID: "t2", UserID: "u1", Amount: 300.25, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: july.Add(-time.Second)},
		txdomain.Transaction{ID: "t3", UserID: "u1", Amount: 99, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: july},
	)

	totals, err := repo.SumByType(ctx, "u1", june, july)
	require.NoError(t, err)
	assert.InDelta(t, 1000, totals.Income, 1e-9)
	assert.InDelta(t, 300.25, totals.Expense, 1e-9)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	day := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	seed(t, repo, txdomain.Transaction{ID: "t1", UserID: "u1", Amount: 10, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day})

	item, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	item.Amount = 12.5
	item.Description = "groceries"
	require.NoError(t, repo.Update(ctx, item))

	item, err = repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, item.Amount, 1e-9)
	assert.Equal(t, "groceries", item.Description)

	assert.ErrorIs(t, repo.Update(ctx, &txdomain.Transaction{ID: "missing"}), txdomain.ErrTransactionNotFound)

	deleted, err := repo.Delete(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, txdomain.ErrTransactionNotFound)
}
