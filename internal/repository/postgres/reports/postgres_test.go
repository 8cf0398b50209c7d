package reports

import (
	"context"
	"testing"
	"time"

	"family-finance-go/internal/db"
	reportsdomain "family-finance-go/internal/domain/reports"
	txdomain "family-finance-go/internal/domain/transactions"
	"family-finance-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatesOverRange(t *testing.T) {
	gormDB, err := db.NewSQLite(db.MemoryDSN, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := NewPostgres(gormDB)
	ctx := context.Background()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	created := day
	for _, item := range []txdomain.Transaction{
		{ID: "t1", UserID: "u1", Amount: 50, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day},
		{ID: "t2", UserID: "u1", Amount: 200, Type: txdomain.TypeExpense, Category: txdomain.CategoryHousing, Date: day.Add(time.Hour)},
		{ID: "t3", UserID: "u2", Amount: 10, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day.Add(2 * time.Hour)},
		{ID: "t4", UserID: "u2", Amount: 1000, Type: txdomain.TypeIncome, Category: txdomain.CategorySalary, Date: day.Add(23 * time.Hour)},
		{ID: "t5", UserID: "u1", Amount: 77, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day.AddDate(0, 0, 1)},
		{ID: "t6", UserID: "u3", Amount: 500, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day},
	} {
		created = created.Add(time.Second)
		item.CreatedAt = created
		require.NoError(t, gormDB.Create(&item).Error)
	}

	users := []string{"u1", "u2"}
	from, to := day, day.AddDate(0, 0, 1)

	totals, err := repo.Totals(ctx, users, from, to)
	require.NoError(t, err)
	assert.InDelta(t, 1000, totals.Income, 1e-9)
	assert.InDelta(t, 260, totals.Expense, 1e-9)

	rows, err := repo.CategoryTotals(ctx, users, from, to)
	require.NoError(t, err)
	byKey := map[string]reportsdomain.CategoryTotal{}
	for _, row := range rows {
		byKey[string(row.Type)+"/"+string(row.Category)] = row
	}
	assert.InDelta(t, 60, byKey["expense/food"].Amount, 1e-9)
	assert.EqualValues(t, 2, byKey["expense/food"].Count)
	assert.InDelta(t, 1000, byKey["income/salary"].Amount, 1e-9)

	expenses, err := repo.TopExpenses(ctx, users, from, to, 2)
	require.NoError(t, err)
	ids := make([]string, 0, len(expenses))
	for _, item := range expenses {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"t2", "t1"}, ids)
}

func TestTopExpensesTiesFollowInsertionOrder(t *testing.T) {
	gormDB, err := db.NewSQLite(db.MemoryDSN, logger.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := NewPostgres(gormDB)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	created := day.Add(time.Hour)
	var ids []string
	for _, amount := range []float64{50, 200, 10, 200} {
		id := uuid.Must(uuid.NewV7()).String()
		item := txdomain.Transaction{ID: id, UserID: "u1", Amount: amount, Type: txdomain.TypeExpense, Category: txdomain.CategoryFood, Date: day, CreatedAt: created}
		if err := gormDB.Create(&item).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}
	// Same created_at for every row, so the 200s tie on everything but id.
	want := []string{ids[1], ids[3], ids[0]}

	top, err := repo.TopExpenses(context.Background(), []string{"u1"}, day, day.AddDate(0, 0, 1), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got := make([]string, 0, len(top))
	for _, item := range top {
		got = append(got, item.ID)
	}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
