package notifications

import (
	"context"
	"errors"
	"time"

	notificationsdomain "family-finance-go/internal/domain/notifications"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(notificationsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockDedup takes a transaction scoped advisory lock on postgres. Other
// dialects rely on their own write serialisation.
func (r *PostgresRepository) LockDedup(ctx context.Context, userID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "notifications:"+userID).Error
}

func (r *PostgresRepository) ExistsInWindow(ctx context.Context, userID string, types []notificationsdomain.Type, from, to time.Time) (bool, error) {
	if len(types) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&notificationsdomain.Notification{}).
		Where("user_id = ? AND type IN ? AND created_at >= ? AND created_at < ?", userID, types, from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) Create(ctx context.Context, items []notificationsdomain.Notification) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CreatedAt = items[i].CreatedAt.UTC()
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter notificationsdomain.ListFilter) ([]notificationsdomain.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&notificationsdomain.Notification{}).Where("user_id = ?", userID)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []notificationsdomain.Notification
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*notificationsdomain.Notification, error) {
	var item notificationsdomain.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notificationsdomain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) SetRead(ctx context.Context, id string, isRead bool) error {
	result := r.db.WithContext(ctx).
		Model(&notificationsdomain.Notification{}).
		Where("id = ?", id).
		Update("is_read", isRead)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notificationsdomain.ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&notificationsdomain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&notificationsdomain.Notification{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
