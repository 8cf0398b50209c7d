package user

import "time"

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Email     *string   `gorm:"type:text"`
	FullName  string    `gorm:"not null;default:''"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// DisplayName returns the best human-readable label for the user.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	return "Unknown"
}
