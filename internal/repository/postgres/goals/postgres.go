package goals

import (
	"context"
	"errors"

	goalsdomain "family-finance-go/internal/domain/goals"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(goalsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetGoal(ctx context.Context, id string) (*goalsdomain.Goal, error) {
	return r.getGoal(ctx, r.db.WithContext(ctx), id)
}

// GetGoalForUpdate uses SELECT ... FOR UPDATE where the dialect supports it.
func (r *PostgresRepository) GetGoalForUpdate(ctx context.Context, id string) (*goalsdomain.Goal, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.getGoal(ctx, query, id)
}

func (r *PostgresRepository) getGoal(ctx context.Context, query *gorm.DB, id string) (*goalsdomain.Goal, error) {
	var goal goalsdomain.Goal
	if err := query.Where("id = ?", id).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, goalsdomain.ErrGoalNotFound
		}
		return nil, err
	}

	items := []goalsdomain.Goal{goal}
	if err := r.loadParticipants(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *PostgresRepository) ListGoalsForUser(ctx context.Context, userID string, offset, limit int) ([]goalsdomain.Goal, int64, error) {
	participating := r.db.Model(&goalsdomain.GoalParticipant{}).Select("goal_id").Where("user_id = ?", userID)
	query := r.db.WithContext(ctx).
		Model(&goalsdomain.Goal{}).
		Where("creator_id = ? OR id IN (?)", userID, participating)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc, id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var items []goalsdomain.Goal
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	if err := r.loadParticipants(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) ListGoalsByCreators(ctx context.Context, creatorIDs []string) ([]goalsdomain.Goal, error) {
	if len(creatorIDs) == 0 {
		return []goalsdomain.Goal{}, nil
	}
	var items []goalsdomain.Goal
	if err := r.db.WithContext(ctx).
		Where("creator_id IN ?", creatorIDs).
		Order("created_at desc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	if err := r.loadParticipants(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateGoal stores the goal and its participant links together. Inside an
// outer transaction gorm nests this as a savepoint.
func (r *PostgresRepository) CreateGoal(ctx context.Context, goal *goalsdomain.Goal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(goal).Error; err != nil {
			return err
		}
		return r.insertParticipants(tx, goal.ID, goal.ParticipantIDs)
	})
}

func (r *PostgresRepository) UpdateGoal(ctx context.Context, goal *goalsdomain.Goal) error {
	return r.db.WithContext(ctx).
		Model(&goalsdomain.Goal{}).
		Where("id = ?", goal.ID).
		Updates(map[string]interface{}{
			"title":         goal.Title,
			"description":   goal.Description,
			"target_amount": goal.TargetAmount,
			"deadline":      goal.Deadline,
			"updated_at":    goal.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) ReplaceParticipants(ctx context.Context, goalID string, userIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("goal_id = ?", goalID).Delete(&goalsdomain.GoalParticipant{}).Error; err != nil {
		return err
	}
	return r.insertParticipants(db, goalID, userIDs)
}

func (r *PostgresRepository) DeleteGoal(ctx context.Context, id string) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("goal_id = ?", id).Delete(&goalsdomain.Contribution{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("goal_id = ?", id).Delete(&goalsdomain.GoalParticipant{}).Error; err != nil {
		return false, err
	}
	result := db.Delete(&goalsdomain.Goal{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) AddContribution(ctx context.Context, contribution *goalsdomain.Contribution) error {
	contribution.Date = contribution.Date.UTC()
	return r.db.WithContext(ctx).Create(contribution).Error
}

func (r *PostgresRepository) IncrementAmount(ctx context.Context, goalID string, amount float64) error {
	result := r.db.WithContext(ctx).
		Model(&goalsdomain.Goal{}).
		Where("id = ?", goalID).
		Update("current_amount", gorm.Expr("current_amount + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return goalsdomain.ErrGoalNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkCompleted(ctx context.Context, goalID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&goalsdomain.Goal{}).
		Where("id = ? AND is_completed = ? AND current_amount >= target_amount", goalID, false).
		Update("is_completed", true)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ListContributions(ctx context.Context, goalID string) ([]goalsdomain.Contribution, error) {
	var items []goalsdomain.Contribution
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("date desc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) ListUserContributions(ctx context.Context, userID string) ([]goalsdomain.Contribution, error) {
	var items []goalsdomain.Contribution
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) CountContributions(ctx context.Context, goalIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(goalIDs))
	if len(goalIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		GoalID string `gorm:"column:goal_id"`
		Total  int64  `gorm:"column:total"`
	}
	if err := r.db.WithContext(ctx).
		Model(&goalsdomain.Contribution{}).
		Select("goal_id, COUNT(*) AS total").
		Where("goal_id IN ?", goalIDs).
		Group("goal_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.GoalID] = row.Total
	}
	return result, nil
}

func (r *PostgresRepository) insertParticipants(db *gorm.DB, goalID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	links := make([]goalsdomain.GoalParticipant, 0, len(userIDs))
	for _, userID := range userIDs {
		links = append(links, goalsdomain.GoalParticipant{GoalID: goalID, UserID: userID})
	}
	return db.Create(&links).Error
}

func (r *PostgresRepository) loadParticipants(ctx context.Context, items []goalsdomain.Goal) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	var links []goalsdomain.GoalParticipant
	if err := r.db.WithContext(ctx).
		Where("goal_id IN ?", ids).
		Order("user_id asc").
		Find(&links).Error; err != nil {
		return err
	}

	byGoal := make(map[string][]string, len(items))
	for _, link := range links {
		byGoal[link.GoalID] = append(byGoal[link.GoalID], link.UserID)
	}
	for i := range items {
		items[i].ParticipantIDs = byGoal[items[i].ID]
		if items[i].ParticipantIDs == nil {
			items[i].ParticipantIDs = []string{}
		}
	}
	return nil
}
