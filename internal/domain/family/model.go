package family

import "time"

const (
	RoleHead   = "head"
	RoleMember = "member"
)

// Family is a two-tier group: exactly one head and zero or more members.
// FamilyMember.UserID is unique across all families, so a user can never be
// a member of one family while heading another.
type Family struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Code      string    `gorm:"size:6;not null;uniqueIndex"`
	HeadID    string    `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type FamilyMember struct {
	FamilyID string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"type:uuid;primaryKey;uniqueIndex"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	Family Family `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE"`
}

// Identity is the resolved view of a caller used for authorization checks.
type Identity struct {
	UserID       string
	FamilyID     string
	IsFamilyHead bool
	FamilyHeadID *string
	// MemberIDs lists the non-head members; populated for heads only.
	MemberIDs []string
}

// HasMember reports whether userID is one of the head's members.
func (i Identity) HasMember(userID string) bool {
	for _, id := range i.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Scope returns the user ids the identity may aggregate over by default:
// the head plus members for heads, only the user otherwise.
func (i Identity) Scope() []string {
	if !i.IsFamilyHead {
		return []string{i.UserID}
	}
	ids := make([]string, 0, len(i.MemberIDs)+1)
	ids = append(ids, i.UserID)
	ids = append(ids, i.MemberIDs...)
	return ids
}
