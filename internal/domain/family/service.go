package family

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	familyCodeLength   = 6
	familyCodeAttempts = 10
)

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
}

func NewService(repo Repository) *Service {
	return NewServiceWithCache(repo, noopCache{}, 0)
}

func NewServiceWithCache(repo Repository, cache Cache, ttl time.Duration) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, cache: cache, cacheTTL: ttl}
}

func (s *Service) GetFamilyByUser(ctx context.Context, userID string) (*Family, error) {
	if family, ok := s.cachedFamily(userID); ok {
		return family, nil
	}

	family, err := s.repo.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.SetByUserID(userID, family, s.cacheTTL)
	return family, nil
}

// CreateFamily makes userID the head of a new family with a fresh join code.
func (s *Service) CreateFamily(ctx context.Context, userID, name string) (*Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	family := Family{ID: uuid.NewString(), Name: name, HeadID: userID}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := ensureUnaffiliated(ctx, tx, userID); err != nil {
			return err
		}

		code, err := generateUniqueCode(ctx, tx)
		if err != nil {
			return err
		}
		family.Code = code

		if err := tx.InsertFamily(ctx, &family); err != nil {
			return err
		}
		return tx.InsertMember(ctx, &FamilyMember{FamilyID: family.ID, UserID: userID, Role: RoleHead})
	})
	if err != nil {
		return nil, err
	}

	s.forget(userID)
	return &family, nil
}

// JoinFamily adds userID as a regular member of the family owning code.
// Codes are matched case-insensitively.
func (s *Service) JoinFamily(ctx context.Context, userID, code string) (*Family, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeRequired
	}

	var joined *Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := ensureUnaffiliated(ctx, tx, userID); err != nil {
			return err
		}

		family, err := tx.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		joined = family
		return tx.InsertMember(ctx, &FamilyMember{FamilyID: family.ID, UserID: userID, Role: RoleMember})
	})
	if err != nil {
		return nil, err
	}

	s.forget(userID)
	return joined, nil
}

// LeaveFamily removes a member. A head may only leave an otherwise empty
// family, which disbands it.
func (s *Service) LeaveFamily(ctx context.Context, userID string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.FindMembership(ctx, userID)
		if err != nil {
			return err
		}
		if member.Role != RoleHead {
			return tx.RemoveMembership(ctx, member.FamilyID, userID)
		}

		count, err := tx.MemberCount(ctx, member.FamilyID)
		switch {
		case err != nil:
			return err
		case count > 1:
			return ErrHeadHasMembers
		}
		return tx.Disband(ctx, member.FamilyID)
	})
	if err != nil {
		return err
	}

	s.forget(userID)
	return nil
}

// UpdateFamily renames the family headed by userID.
func (s *Service) UpdateFamily(ctx context.Context, userID, name string) (*Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	family, err := headedBy(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Rename(ctx, family.ID, name); err != nil {
		return nil, err
	}

	// Every member caches the same family row.
	s.cache.Clear()
	family.Name = name
	return family, nil
}

func (s *Service) ListMembers(ctx context.Context, userID string) ([]FamilyMember, error) {
	family, err := s.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.Members(ctx, family.ID)
}

// RemoveMember lets a head drop another member of their own family.
func (s *Service) RemoveMember(ctx context.Context, headID, memberID string) error {
	if memberID == headID {
		return ErrCannotRemoveHead
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		family, err := headedBy(ctx, tx, headID)
		if err != nil {
			return err
		}

		member, err := tx.FindMembership(ctx, memberID)
		if errors.Is(err, ErrFamilyNotFound) || (err == nil && member.FamilyID != family.ID) {
			return ErrMemberNotFound
		}
		if err != nil {
			return err
		}
		return tx.RemoveMembership(ctx, family.ID, memberID)
	})
	if err != nil {
		return err
	}

	s.forget(memberID)
	return nil
}

func ensureUnaffiliated(ctx context.Context, repo Repository, userID string) error {
	member, err := repo.HasMembership(ctx, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyInFamily
	}
	return nil
}

func headedBy(ctx context.Context, repo Repository, userID string) (*Family, error) {
	family, err := repo.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if family.HeadID != userID {
		return nil, ErrNotFamilyHead
	}
	return family, nil
}

// Identity resolves the family relationship of userID. Users without a
// family get a plain non-head identity.
func (s *Service) Identity(ctx context.Context, userID string) (Identity, error) {
	identity := Identity{UserID: userID}

	family, err := s.GetFamilyByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrFamilyNotFound) {
			return identity, nil
		}
		return Identity{}, err
	}

	identity.FamilyID = family.ID
	if family.HeadID != userID {
		headID := family.HeadID
		identity.FamilyHeadID = &headID
		return identity, nil
	}

	identity.IsFamilyHead = true
	members, err := s.repo.Members(ctx, family.ID)
	if err != nil {
		return Identity{}, err
	}
	for _, member := range members {
		if member.UserID == userID {
			continue
		}
		identity.MemberIDs = append(identity.MemberIDs, member.UserID)
	}
	return identity, nil
}

// ReportScope returns the user ids callerID may aggregate over. An explicit
// target other than the caller is only allowed for the caller's own members.
func (s *Service) ReportScope(ctx context.Context, callerID, targetUserID string) ([]string, error) {
	identity, err := s.Identity(ctx, callerID)
	if err != nil {
		return nil, err
	}

	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" {
		return identity.Scope(), nil
	}
	if err := authorizeTarget(identity, targetUserID); err != nil {
		return nil, err
	}
	return []string{targetUserID}, nil
}

// AuthorizeTarget checks that callerID may act on behalf of targetUserID:
// either themselves or, for a head, one of their members.
func (s *Service) AuthorizeTarget(ctx context.Context, callerID, targetUserID string) error {
	if callerID == targetUserID {
		return nil
	}
	identity, err := s.Identity(ctx, callerID)
	if err != nil {
		return err
	}
	return authorizeTarget(identity, targetUserID)
}

func authorizeTarget(identity Identity, targetUserID string) error {
	if targetUserID == identity.UserID {
		return nil
	}
	if !identity.IsFamilyHead || !identity.HasMember(targetUserID) {
		return ErrForbidden
	}
	return nil
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < familyCodeAttempts; i++ {
		code, err := generateCode(familyCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
