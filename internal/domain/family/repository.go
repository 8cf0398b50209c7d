package family

import "context"

// Repository persists families and their memberships. A user belongs to at
// most one family, so lookups by user id return a single row.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	FindByMember(ctx context.Context, userID string) (*Family, error)
	FindByCode(ctx context.Context, code string) (*Family, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	InsertFamily(ctx context.Context, family *Family) error
	Rename(ctx context.Context, familyID, name string) error
	// Disband removes the family together with all of its memberships.
	Disband(ctx context.Context, familyID string) error

	FindMembership(ctx context.Context, userID string) (*FamilyMember, error)
	HasMembership(ctx context.Context, userID string) (bool, error)
	// Members returns memberships ordered by join time.
	Members(ctx context.Context, familyID string) ([]FamilyMember, error)
	MemberCount(ctx context.Context, familyID string) (int64, error)
	InsertMember(ctx context.Context, member *FamilyMember) error
	RemoveMembership(ctx context.Context, familyID, userID string) error
}
