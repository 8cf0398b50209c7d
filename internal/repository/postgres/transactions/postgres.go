package transactions

import (
	"context"
	"errors"
	"time"

	txdomain "family-finance-go/internal/domain/transactions"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(txdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) List(ctx context.Context, filter txdomain.ListFilter) ([]txdomain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&txdomain.Transaction{}).Where("user_id IN ?", filter.UserIDs)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("date <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("date desc, created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []txdomain.Transaction
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*txdomain.Transaction, error) {
	var item txdomain.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, txdomain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *txdomain.Transaction) error {
	item.Date = item.Date.UTC()
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *PostgresRepository) Update(ctx context.Context, item *txdomain.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&txdomain.Transaction{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"amount":      item.Amount,
			"description": item.Description,
			"type":        item.Type,
			"category":    item.Category,
			"date":        item.Date.UTC(),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return txdomain.ErrTransactionNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&txdomain.Transaction{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) SumByType(ctx context.Context, userID string, from, to time.Time) (txdomain.Totals, error) {
	var rows []struct {
		Type  txdomain.Type `gorm:"column:type"`
		Total float64       `gorm:"column:total"`
	}
	if err := r.db.WithContext(ctx).
		Model(&txdomain.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from.UTC(), to.UTC()).
		Group("type").
		Scan(&rows).Error; err != nil {
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
