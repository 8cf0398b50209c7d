package goals

import (
	"context"
	"testing"
	"time"

	"family-finance-go/internal/db"
	goalsdomain "family-finance-go/internal/domain/goals"
	userdomain "family-finance-go/internal/domain/user"
	"family-finance-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) (*PostgresRepository, *gorm.DB) {
	t.Helper()
	gormDB, err := db.NewSQLite(db.MemoryDSN, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	for _, id := range []string{"creator", "partner", "outsider"} {
		require.NoError(t, gormDB.Create(&userdomain.User{ID: id, FullName: id}).Error)
	}
	return NewPostgres(gormDB), gormDB
}

func TestCreateAndLoadParticipants(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	goal := goalsdomain.Goal{ID: "g1", Title: "Trip", TargetAmount: 100, CreatorID: "creator", ParticipantIDs: []string{"partner"}}
	require.NoError(t, repo.CreateGoal(ctx, &goal))

	loaded, err := repo.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"partner"}, loaded.ParticipantIDs)

	items, total, err := repo.ListGoalsForUser(ctx, "partner", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "g1", items[0].ID)

	_, total, err = repo.ListGoalsForUser(ctx, "outsider", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.ReplaceParticipants(ctx, "g1", nil))
	loaded, err = repo.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, loaded.ParticipantIDs)

	_, err = repo.GetGoal(ctx, "missing")
	assert.ErrorIs(t, err, goalsdomain.ErrGoalNotFound)
}

func TestIncrementAndMarkCompletedOnce(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	goal := goalsdomain.Goal{ID: "g1", Title: "Bike", TargetAmount: 100, CreatorID: "creator"}
	require.NoError(t, repo.CreateGoal(ctx, &goal))

	require.NoError(t, repo.IncrementAmount(ctx, "g1", 60))
	completed, err := repo.MarkCompleted(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, completed)

	require.NoError(t, repo.IncrementAmount(ctx, "g1", 40))
	completed, err = repo.MarkCompleted(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, completed)

	completed, err = repo.MarkCompleted(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, completed)

	loaded, err := repo.GetGoalForUpdate(ctx, "g1")
	require.NoError(t, err)
	assert.InDelta(t, 100, loaded.CurrentAmount, 1e-9)
	assert.True(t, loaded.IsCompleted)

	assert.ErrorIs(t, repo.IncrementAmount(ctx, "missing", 1), goalsdomain.ErrGoalNotFound)
}

func TestTransactionRollsBack(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	goal := goalsdomain.Goal{ID: "g1", Title: "Car", TargetAmount: 100, CreatorID: "creator"}
	require.NoError(t, repo.CreateGoal(ctx, &goal))

	err := repo.Transaction(ctx, func(tx goalsdomain.Repository) error {
		if err := tx.IncrementAmount(ctx, "g1", 30); err != nil {
			return err
		}
		return goalsdomain.ErrNotParticipant
	})
	assert.ErrorIs(t, err, goalsdomain.ErrNotParticipant)

	loaded, err := repo.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Zero(t, loaded.CurrentAmount)
}

func TestContributionsAndDeleteCascade(t *testing.T) {
	repo, gormDB := newTestRepo(t)
	ctx := context.Background()

	goal := goalsdomain.Goal{ID: "g1", Title: "Roof", TargetAmount: 500, CreatorID: "creator", ParticipantIDs: []string{"partner"}}
	require.NoError(t, repo.CreateGoal(ctx, &goal))

	day := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AddContribution(ctx, &goalsdomain.Contribution{ID: "c1", GoalID: "g1", UserID: "creator", Amount: 10, Date: day}))
	require.NoError(t, repo.AddContribution(ctx, &goalsdomain.Contribution{ID: "c2", GoalID: "g1", UserID: "partner", Amount: 20, Date: day.Add(time.Hour)}))

	items, err := repo.ListContributions(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c2", items[0].ID)

	mine, err := repo.ListUserContributions(ctx, "partner")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	counts, err := repo.CountContributions(ctx, []string{"g1", "g2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"g1": 2}, counts)

	deleted, err := repo.DeleteGoal(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, deleted)

	var remaining int64
	require.NoError(t, gormDB.Model(&goalsdomain.Contribution{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, gormDB.Model(&goalsdomain.GoalParticipant{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	deleted, err = repo.DeleteGoal(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCreateGoalLeavesNothingWhenParticipantsFail(t *testing.T) {
	repo, gormDB := newTestRepo(t)
	ctx := context.Background()

	// The repeated participant violates the (goal_id, user_id) primary key.
	goal := goalsdomain.Goal{ID: "g-dup", Title: "Bike", TargetAmount: 300, CreatorID: "creator", ParticipantIDs: []string{"partner", "partner"}}
	if err := repo.CreateGoal(ctx, &goal); err == nil {
		t.Fatalf("expected participant insert to fail")
	}

	var goals, links int64
	if err := gormDB.Model(&goalsdomain.Goal{}).Where("id = ?", "g-dup").Count(&goals).Error; err != nil {
		t.Fatalf("count goals: %v", err)
	}
	if err := gormDB.Model(&goalsdomain.GoalParticipant{}).Where("goal_id = ?", "g-dup").Count(&links).Error; err != nil {
		t.Fatalf("count participants: %v", err)
	}
	if goals != 0 || links != 0 {
		t.Fatalf("expected no rows left behind, got %d goals and %d participants", goals, links)
	}
}

func TestCreateGoalInsideOuterTransactionRollsBack(t *testing.T) {
	repo, gormDB := newTestRepo(t)
	ctx := context.Background()

	err := repo.Transaction(ctx, func(tx goalsdomain.Repository) error {
		return tx.CreateGoal(ctx, &goalsdomain.Goal{ID: "g-nested", Title: "Car", TargetAmount: 900, CreatorID: "creator", ParticipantIDs: []string{"outsider", "outsider"}})
	})
	if err == nil {
		t.Fatalf("expected transaction to fail")
	}

	var goals int64
	if err := gormDB.Model(&goalsdomain.Goal{}).Where("id = ?", "g-nested").Count(&goals).Error; err != nil {
		t.Fatalf("count goals: %v", err)
	}
	if goals != 0 {
		t.Fatalf("expected goal row to be rolled back, got %d", goals)
	}
}
