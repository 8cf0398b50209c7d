package user

import (
	"context"
	"reflect"
	"testing"
)

type fakeUserRepo struct {
	users map[string]*User
}

func newFakeUserRepo(users ...User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *fakeUserRepo) UpsertUser(ctx context.Context, user *User) error {
	existing, ok := r.users[user.ID]
	if !ok {
		copied := *user
		r.users[user.ID] = &copied
		return nil
	}
	if user.Email != nil {
		existing.Email = user.Email
	}
	if user.FullName != "" {
		existing.FullName = user.FullName
	}
	return nil
}

func (r *fakeUserRepo) GetUser(ctx context.Context, userID string) (*User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) ListUsers(ctx context.Context, userIDs []string) ([]User, error) {
	result := make([]User, 0, len(userIDs))
	for _, id := range userIDs {
		if user, ok := r.users[id]; ok {
			result = append(result, *user)
		}
	}
	return result, nil
}

func TestUpsertProfileRequiresID(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	if err := svc.UpsertProfile(context.Background(), "  ", "a@b.c", "A"); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestUpsertProfileStoresEmailAndName(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	if err := svc.UpsertProfile(context.Background(), "user-1", " ana@example.com ", " Ana "); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	stored := repo.users["user-1"]
	if stored == nil || stored.Email == nil || *stored.Email != "ana@example.com" {
		t.Fatalf("expected trimmed email, got %+v", stored)
	}
	if stored.FullName != "Ana" {
		t.Fatalf("expected trimmed name, got %q", stored.FullName)
	}
}

func TestExistingIDsDropsUnknownAndDuplicates(t *testing.T) {
	repo := newFakeUserRepo(User{ID: "u1", FullName: "One"}, User{ID: "u2"})
	svc := NewService(repo)

	got, err := svc.ExistingIDs(context.Background(), []string{"u2", "missing", "u1", "u2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reflect.DeepEqual(got, []string{"u2", "u1"}) {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestDisplayNameFallbacks(t *testing.T) {
	email := "x@example.com"
	if got := (User{FullName: "X"}).DisplayName(); got != "X" {
		t.Fatalf("expected full name, got %q", got)
	}
	if got := (User{Email: &email}).DisplayName(); got != email {
		t.Fatalf("expected email, got %q", got)
	}
	if got := (User{}).DisplayName(); got != "Unknown" {
		t.Fatalf("expected Unknown, got %q", got)
	}
}
