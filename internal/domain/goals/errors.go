package goals

import "errors"

var (
	ErrGoalNotFound   = errors.New("goal not found")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrInvalidTarget  = errors.New("target amount must be positive")
	ErrTitleRequired  = errors.New("title is required")
	ErrNotParticipant = errors.New("not a participant in this goal")
	ErrNotCreator     = errors.New("only the goal creator can do this")
)
