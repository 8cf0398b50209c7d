package notifications

import "time"

type Type string

const (
	TypeBudgetWarning    Type = "budget_warning"
	TypeBudgetCritical   Type = "budget_critical"
	TypeGoalAchieved     Type = "goal_achieved"
	TypeGoalContribution Type = "goal_contribution"
	TypeManual           Type = "manual"
)

type Notification struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"not null"`
	Message   string    `gorm:"type:text;not null"`
	Type      Type      `gorm:"type:varchar(32);not null;index:idx_notifications_dedup,priority:2"`
	IsRead    bool      `gorm:"not null;default:false"`
	UserID    string    `gorm:"type:uuid;not null;index:idx_notifications_dedup,priority:1"`
	CreatedAt time.Time `gorm:"not null;index:idx_notifications_dedup,priority:3"`
}

// Draft is a notification that has not been persisted yet.
type Draft struct {
	UserID  string
	Type    Type
	Title   string
	Message string
}

type ListFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
