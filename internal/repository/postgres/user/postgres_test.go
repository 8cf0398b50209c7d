package user

import (
	"context"
	"testing"

	"family-finance-go/internal/db"
	domain "family-finance-go/internal/domain/user"
	"family-finance-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertKeepsKnownFields(t *testing.T) {
	gormDB, err := db.NewSQLite(db.MemoryDSN, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := NewPostgres(gormDB)
	ctx := context.Background()

	email := "ana@example.com"
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ID: "u1", Email: &email, FullName: "Ana"}))
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ID: "u1"}))

	user, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.FullName)
	require.NotNil(t, user.Email)
	assert.Equal(t, email, *user.Email)

	users, err := repo.ListUsers(ctx, []string{"u1", "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = repo.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
