package goals

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetGoal(ctx context.Context, id string) (*Goal, error)
	// GetGoalForUpdate loads the goal and locks its row until the surrounding
	// transaction ends.
	GetGoalForUpdate(ctx context.Context, id string) (*Goal, error)
	ListGoalsForUser(ctx context.Context, userID string, offset, limit int) ([]Goal, int64, error)
	ListGoalsByCreators(ctx context.Context, creatorIDs []string) ([]Goal, error)
	CreateGoal(ctx context.Context, goal *Goal) error
	UpdateGoal(ctx context.Context, goal *Goal) error
	ReplaceParticipants(ctx context.Context, goalID string, userIDs []string) error
	DeleteGoal(ctx context.Context, id string) (bool, error)
	AddContribution(ctx context.Context, contribution *Contribution) error
	// IncrementAmount adds amount to current_amount in a single UPDATE.
	IncrementAmount(ctx context.Context, goalID string, amount float64) error
	// MarkCompleted flips is_completed when current_amount >= target_amount
	// and the goal is not completed yet. It reports whether a row changed.
	MarkCompleted(ctx context.Context, goalID string) (bool, error)
	ListContributions(ctx context.Context, goalID string) ([]Contribution, error)
	ListUserContributions(ctx context.Context, userID string) ([]Contribution, error)
	CountContributions(ctx context.Context, goalIDs []string) (map[string]int64, error)
}
