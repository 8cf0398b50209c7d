package user

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertProfile records the identity presented by the auth layer.
func (s *Service) UpsertProfile(ctx context.Context, userID, email, fullName string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	user := User{ID: userID, FullName: strings.TrimSpace(fullName)}
	if email = strings.TrimSpace(email); email != "" {
		user.Email = &email
	}

	return s.repo.UpsertUser(ctx, &user)
}

func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

// Names maps each known user id to its display name. Unknown ids are absent.
func (s *Service) Names(ctx context.Context, userIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	users, err := s.repo.ListUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		result[user.ID] = user.DisplayName()
	}
	return result, nil
}

// ExistingIDs filters userIDs down to the ones that exist, keeping input order
// and dropping duplicates.
func (s *Service) ExistingIDs(ctx context.Context, userIDs []string) ([]string, error) {
	names, err := s.Names(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(userIDs))
	result := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := names[id]; !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result, nil
}
