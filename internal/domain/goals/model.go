package goals

import "time"

type Goal struct {
	ID            string     `gorm:"type:uuid;primaryKey"`
	Title         string     `gorm:"not null"`
	Description   *string    `gorm:"type:text"`
	TargetAmount  float64    `gorm:"type:numeric(12,2);not null"`
	CurrentAmount float64    `gorm:"type:numeric(12,2);not null;default:0"`
	Deadline      *time.Time
	IsCompleted   bool       `gorm:"not null;default:false"`
	CreatorID     string     `gorm:"type:uuid;index;not null"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`

	// ParticipantIDs is loaded from goal_participants and never includes
	// the creator.
	ParticipantIDs []string `gorm:"-"`
}

// HasAccess reports whether userID created or participates in the goal.
func (g Goal) HasAccess(userID string) bool {
	if g.CreatorID == userID {
		return true
	}
	for _, id := range g.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Members returns the creator followed by the participants.
func (g Goal) Members() []string {
	ids := make([]string, 0, len(g.ParticipantIDs)+1)
	ids = append(ids, g.CreatorID)
	for _, id := range g.ParticipantIDs {
		if id != g.CreatorID {
			ids = append(ids, id)
		}
	}
	return ids
}

type GoalParticipant struct {
	GoalID string `gorm:"type:uuid;primaryKey"`
	UserID string `gorm:"type:uuid;primaryKey;index"`
}

type Contribution struct {
	ID     string    `gorm:"type:uuid;primaryKey"`
	GoalID string    `gorm:"type:uuid;index;not null"`
	UserID string    `gorm:"type:uuid;index;not null"`
	Amount float64   `gorm:"type:numeric(12,2);not null"`
	Date   time.Time `gorm:"not null"`
}

func (Contribution) TableName() string {
	return "goal_contributions"
}

type Progress struct {
	GoalID        string
	Title         string
	TargetAmount  float64
	CurrentAmount float64
	Remaining     float64
	Percentage    float64
	IsCompleted   bool
	Deadline      *time.Time
	DaysRemaining *int
}

// GoalReport is one row of the family goal progress report.
type GoalReport struct {
	Goal              Goal
	Progress          Progress
	CreatorName       string
	ContributionCount int64
}

type CreateInput struct {
	CreatorID      string
	Title          string
	Description    *string
	TargetAmount   float64
	Deadline       *time.Time
	ParticipantIDs []string
}

// UpdateInput is a partial update. A non-nil ParticipantIDs replaces the
// whole participant set.
type UpdateInput struct {
	GoalID         string
	CallerID       string
	Title          *string
	Description    *string
	TargetAmount   *float64
	Deadline       *time.Time
	ClearDeadline  bool
	ParticipantIDs *[]string
}

type ContributionResult struct {
	Contribution   Contribution
	Goal           Goal
	BecameComplete bool
}
