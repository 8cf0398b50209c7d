package family

import (
	"context"
	"errors"

	familydomain "family-finance-go/internal/domain/family"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(familydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgres(tx))
	})
}

func (r *PostgresRepository) FindByMember(ctx context.Context, userID string) (*familydomain.Family, error) {
	var row familydomain.Family
	err := r.db.WithContext(ctx).
		Table("families").
		Select("families.*").
		Joins("JOIN family_members m ON m.family_id = families.id").
		Where("m.user_id = ?", userID).
		Take(&row).Error
	return found(&row, err, familydomain.ErrFamilyNotFound)
}

func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*familydomain.Family, error) {
	var row familydomain.Family
	err := r.db.WithContext(ctx).Take(&row, "code = ?", code).Error
	return found(&row, err, familydomain.ErrFamilyCodeNotFound)
}

func (r *PostgresRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	n, err := r.count(ctx, &familydomain.Family{}, "code = ?", code)
	return n > 0, err
}

func (r *PostgresRepository) InsertFamily(ctx context.Context, family *familydomain.Family) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *PostgresRepository) Rename(ctx context.Context, familyID, name string) error {
	return r.db.WithContext(ctx).
		Model(&familydomain.Family{ID: familyID}).
		Update("name", name).Error
}

func (r *PostgresRepository) Disband(ctx context.Context, familyID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("family_id = ?", familyID).Delete(&familydomain.FamilyMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", familyID).Delete(&familydomain.Family{}).Error
	})
}

func (r *PostgresRepository) FindMembership(ctx context.Context, userID string) (*familydomain.FamilyMember, error) {
	var row familydomain.FamilyMember
	err := r.db.WithContext(ctx).Take(&row, "user_id = ?", userID).Error
	return found(&row, err, familydomain.ErrFamilyNotFound)
}

func (r *PostgresRepository) HasMembership(ctx context.Context, userID string) (bool, error) {
	n, err := r.count(ctx, &familydomain.FamilyMember{}, "user_id = ?", userID)
	return n > 0, err
}

func (r *PostgresRepository) Members(ctx context.Context, familyID string) ([]familydomain.FamilyMember, error) {
	rows := []familydomain.FamilyMember{}
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("joined_at").
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) MemberCount(ctx context.Context, familyID string) (int64, error) {
	return r.count(ctx, &familydomain.FamilyMember{}, "family_id = ?", familyID)
}

func (r *PostgresRepository) InsertMember(ctx context.Context, member *familydomain.FamilyMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) RemoveMembership(ctx context.Context, familyID, userID string) error {
	return r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Delete(&familydomain.FamilyMember{}).Error
}

func (r *PostgresRepository) count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// found maps gorm's missing-row error onto the domain sentinel.
func found[T any](row *T, err error, notFound error) (*T, error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound
	case err != nil:
		return nil, err
	}
	return row, nil
}
