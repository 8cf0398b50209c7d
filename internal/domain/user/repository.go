package user

import "context"

type Repository interface {
	UpsertUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	ListUsers(ctx context.Context, userIDs []string) ([]User, error)
}
