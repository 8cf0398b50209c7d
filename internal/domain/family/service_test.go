package family

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type fakeFamilyRepo struct {
	families map[string]*Family
	members  map[string]*FamilyMember
}

func newFakeFamilyRepo() *fakeFamilyRepo {
	return &fakeFamilyRepo{
		families: make(map[string]*Family),
		members:  make(map[string]*FamilyMember),
	}
}

// seed creates a family headed by headID with the given members.
func (r *fakeFamilyRepo) seed(id, code, headID string, memberIDs ...string) {
	r.families[id] = &Family{ID: id, Name: "Fam", Code: code, HeadID: headID}
	r.members[headID] = &FamilyMember{FamilyID: id, UserID: headID, Role: RoleHead}
	for _, memberID := range memberIDs {
		r.members[memberID] = &FamilyMember{FamilyID: id, UserID: memberID, Role: RoleMember}
	}
}

func (r *fakeFamilyRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeFamilyRepo) FindByMember(ctx context.Context, userID string) (*Family, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	family, ok := r.families[member.FamilyID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	copied := *family
	return &copied, nil
}

func (r *fakeFamilyRepo) FindByCode(ctx context.Context, code string) (*Family, error) {
	for _, family := range r.families {
		if family.Code == code {
			copied := *family
			return &copied, nil
		}
	}
	return nil, ErrFamilyCodeNotFound
}

func (r *fakeFamilyRepo) FindMembership(ctx context.Context, userID string) (*FamilyMember, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	return member, nil
}

func (r *fakeFamilyRepo) Members(ctx context.Context, familyID string) ([]FamilyMember, error) {
	result := make([]FamilyMember, 0)
	for _, member := range r.members {
		if member.FamilyID == familyID {
			result = append(result, *member)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (r *fakeFamilyRepo) InsertFamily(ctx context.Context, family *Family) error {
	r.families[family.ID] = family
	return nil
}

func (r *fakeFamilyRepo) InsertMember(ctx context.Context, member *FamilyMember) error {
	r.members[member.UserID] = member
	return nil
}

func (r *fakeFamilyRepo) Rename(ctx context.Context, familyID, name string) error {
	family, ok := r.families[familyID]
	if !ok {
		return ErrFamilyNotFound
	}
	family.Name = name
	return nil
}

func (r *fakeFamilyRepo) Disband(ctx context.Context, familyID string) error {
	for userID, member := range r.members {
		if member.FamilyID == familyID {
			delete(r.members, userID)
		}
	}
	delete(r.families, familyID)
	return nil
}

func (r *fakeFamilyRepo) RemoveMembership(ctx context.Context, familyID, userID string) error {
	member, ok := r.members[userID]
	if ok && member.FamilyID == familyID {
		delete(r.members, userID)
	}
	return nil
}

func (r *fakeFamilyRepo) MemberCount(ctx context.Context, familyID string) (int64, error) {
	var count int64
	for _, member := range r.members {
		if member.FamilyID == familyID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFamilyRepo) HasMembership(ctx context.Context, userID string) (bool, error) {
	_, ok := r.members[userID]
	return ok, nil
}

func (r *fakeFamilyRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	for _, family := range r.families {
		if family.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func TestCreateFamilyMakesCallerHead(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewService(repo)

	result, err := svc.CreateFamily(context.Background(), "head-1", "  Smiths  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "Smiths" {
		t.Fatalf("expected name trimmed, got %q", result.Name)
	}
	if result.HeadID != "head-1" {
		t.Fatalf("expected head head-1, got %q", result.HeadID)
	}
	if len(result.Code) != familyCodeLength {
		t.Fatalf("expected code length %d, got %q", familyCodeLength, result.Code)
	}
	member := repo.members["head-1"]
	if member == nil || member.Role != RoleHead || member.FamilyID != result.ID {
		t.Fatalf("expected head membership, got %+v", member)
	}
}

func TestCreateFamilyAlreadyInFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "AAAAAA", "head-1", "user-1")

	svc := NewService(repo)
	_, err := svc.CreateFamily(context.Background(), "user-1", "Other")
	if !errors.Is(err, ErrAlreadyInFamily) {
		t.Fatalf("expected ErrAlreadyInFamily, got %v", err)
	}
}

func TestJoinFamilyNormalizesCode(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1")

	svc := NewService(repo)
	result, err := svc.JoinFamily(context.Background(), "user-1", " zxcvbn ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ID != "fam-1" {
		t.Fatalf("expected family fam-1, got %s", result.ID)
	}
	if member := repo.members["user-1"]; member == nil || member.Role != RoleMember {
		t.Fatalf("expected member role, got %+v", member)
	}
}

func TestJoinFamilyCodeNotFound(t *testing.T) {
	svc := NewService(newFakeFamilyRepo())
	_, err := svc.JoinFamily(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrFamilyCodeNotFound) {
		t.Fatalf("expected ErrFamilyCodeNotFound, got %v", err)
	}
}

func TestLeaveFamilyHeadWithMembersRejected(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1", "user-2")

	svc := NewService(repo)
	err := svc.LeaveFamily(context.Background(), "head-1")
	if !errors.Is(err, ErrHeadHasMembers) {
		t.Fatalf("expected ErrHeadHasMembers, got %v", err)
	}
	if _, ok := repo.members["head-1"]; !ok {
		t.Fatalf("expected head membership kept")
	}
}

func TestLeaveFamilySoloHeadDeletesFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1")

	svc := NewService(repo)
	if err := svc.LeaveFamily(context.Background(), "head-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.families["fam-1"]; ok {
		t.Fatalf("expected family deleted")
	}
}

func TestLeaveFamilyMember(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1", "user-2")

	svc := NewService(repo)
	if err := svc.LeaveFamily(context.Background(), "user-2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members["user-2"]; ok {
		t.Fatalf("expected membership deleted")
	}
	if _, ok := repo.families["fam-1"]; !ok {
		t.Fatalf("expected family kept")
	}
}

func TestUpdateFamilyRequiresHead(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1", "user-2")

	svc := NewService(repo)
	if _, err := svc.UpdateFamily(context.Background(), "user-2", "New"); !errors.Is(err, ErrNotFamilyHead) {
		t.Fatalf("expected ErrNotFamilyHead, got %v", err)
	}

	result, err := svc.UpdateFamily(context.Background(), "head-1", "New Name")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "New Name" || repo.families["fam-1"].Name != "New Name" {
		t.Fatalf("expected updated name, got %q", result.Name)
	}
}

func TestRemoveMember(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1", "user-1", "user-2")
	repo.seed("fam-2", "QWERTY", "head-2", "stranger")

	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.RemoveMember(ctx, "user-1", "user-2"); !errors.Is(err, ErrNotFamilyHead) {
		t.Fatalf("expected ErrNotFamilyHead, got %v", err)
	}
	if err := svc.RemoveMember(ctx, "head-1", "head-1"); !errors.Is(err, ErrCannotRemoveHead) {
		t.Fatalf("expected ErrCannotRemoveHead, got %v", err)
	}
	if err := svc.RemoveMember(ctx, "head-1", "stranger"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if err := svc.RemoveMember(ctx, "head-1", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members["user-1"]; ok {
		t.Fatalf("expected member removed")
	}
}

func TestIdentity(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1", "user-1", "user-2")

	svc := NewService(repo)
	ctx := context.Background()

	head, err := svc.Identity(ctx, "head-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !head.IsFamilyHead || len(head.MemberIDs) != 2 {
		t.Fatalf("expected head with 2 members, got %+v", head)
	}
	if scope := head.Scope(); len(scope) != 3 || scope[0] != "head-1" {
		t.Fatalf("expected head-first scope of 3, got %v", scope)
	}

	member, err := svc.Identity(ctx, "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if member.IsFamilyHead || member.FamilyHeadID == nil || *member.FamilyHeadID != "head-1" {
		t.Fatalf("expected member identity pointing at head-1, got %+v", member)
	}

	loner, err := svc.Identity(ctx, "nobody")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if loner.IsFamilyHead || loner.FamilyID != "" {
		t.Fatalf("expected empty identity, got %+v", loner)
	}
}

func TestReportScope(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1", "user-1")
	repo.seed("fam-2", "QWERTY", "head-2", "stranger")

	svc := NewService(repo)
	ctx := context.Background()

	scope, err := svc.ReportScope(ctx, "head-1", "user-1")
	if err != nil || len(scope) != 1 || scope[0] != "user-1" {
		t.Fatalf("expected [user-1], got %v (%v)", scope, err)
	}
	if _, err := svc.ReportScope(ctx, "head-1", "stranger"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ReportScope(ctx, "user-1", "head-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member, got %v", err)
	}
	scope, err = svc.ReportScope(ctx, "user-1", "")
	if err != nil || len(scope) != 1 || scope[0] != "user-1" {
		t.Fatalf("expected member self scope, got %v (%v)", scope, err)
	}
}

type countingCache struct {
	noopCache
	items map[string]*Family
	hits  int
}

func (c *countingCache) GetByUserID(userID string) (*Family, bool) {
	family, ok := c.items[userID]
	if ok {
		c.hits++
	}
	return family, ok
}

func (c *countingCache) SetByUserID(userID string, family *Family, _ time.Duration) {
	c.items[userID] = family
}

func (c *countingCache) DeleteByUserID(userID string) {
	delete(c.items, userID)
}

func TestGetFamilyByUserUsesCache(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.seed("fam-1", "ZXCVBN", "head-1")
	cache := &countingCache{items: make(map[string]*Family)}

	svc := NewServiceWithCache(repo, cache, time.Minute)
	ctx := context.Background()

	if _, err := svc.GetFamilyByUser(ctx, "head-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.GetFamilyByUser(ctx, "head-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", cache.hits)
	}

	if err := svc.LeaveFamily(ctx, "head-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := cache.items["head-1"]; ok {
		t.Fatalf("expected cache entry dropped after leave")
	}
}

func TestBlankNameAndCodeRejected(t *testing.T) {
	svc := NewService(newFakeFamilyRepo())
	ctx := context.Background()

	if _, err := svc.CreateFamily(ctx, "user-1", "   "); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.JoinFamily(ctx, "user-1", " "); !errors.Is(err, ErrCodeRequired) {
		t.Fatalf("expected ErrCodeRequired, got %v", err)
	}
}
