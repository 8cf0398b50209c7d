package reports

import (
	"context"
	"time"

	reportsdomain "family-finance-go/internal/domain/reports"
	txdomain "family-finance-go/internal/domain/transactions"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Totals(ctx context.Context, userIDs []string, from, to time.Time) (txdomain.Totals, error) {
	where, args := buildRangeWhere(userIDs, from, to)
	query := "SELECT t.type AS type, COALESCE(SUM(t.amount), 0) AS total FROM transactions t WHERE " + where + " GROUP BY t.type"

	var rows []struct {
		Type  txdomain.Type `gorm:"column:type"`
		Total float64       `gorm:"column:total"`
	}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return txdomain.Totals{}, err
	}

	var totals txdomain.Totals
	for _, row := range rows {
		switch row.Type {
		case txdomain.TypeIncome:
			totals.Income = row.Total
		case txdomain.TypeExpense:
			totals.Expense = row.Total
		}
	}
	return totals, nil
}

func (r *PostgresRepository) CategoryTotals(ctx context.Context, userIDs []string, from, to time.Time) ([]reportsdomain.CategoryTotal, error) {
	where, args := buildRangeWhere(userIDs, from, to)
	query := "SELECT t.type AS type, t.category AS category, COALESCE(SUM(t.amount), 0) AS amount, COUNT(*) AS count FROM transactions t WHERE " +
		where + " GROUP BY t.type, t.category ORDER BY t.type, t.category"

	var rows []reportsdomain.CategoryTotal
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopExpenses breaks amount ties by created_at and then id. Transaction ids
// are UUIDv7, so id order follows insertion order within the same instant.
func (r *PostgresRepository) TopExpenses(ctx context.Context, userIDs []string, from, to time.Time, limit int) ([]txdomain.Transaction, error) {
	items := []txdomain.Transaction{}
	if err := r.db.WithContext(ctx).
		Where("user_id IN ? AND type = ? AND date >= ? AND date < ?", userIDs, txdomain.TypeExpense, from.UTC(), to.UTC()).
		Order("amount desc, created_at asc, id asc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func buildRangeWhere(userIDs []string, from, to time.Time) (string, []interface{}) {
	return "t.user_id IN (?) AND t.date >= ? AND t.date < ?", []interface{}{userIDs, from.UTC(), to.UTC()}
}
