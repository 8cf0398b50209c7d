package goals

import (
	"context"
	"math"
	"strings"
	"time"

	"family-finance-go/internal/domain/family"
	"family-finance-go/internal/domain/notifications"
	"family-finance-go/pkg/logger"
	"github.com/google/uuid"
)

// Users resolves user ids to existing accounts and display names.
type Users interface {
	ExistingIDs(ctx context.Context, userIDs []string) ([]string, error)
	Names(ctx context.Context, userIDs []string) (map[string]string, error)
}

type Notifier interface {
	Notify(ctx context.Context, drafts ...notifications.Draft) ([]notifications.Notification, error)
}

type IdentityResolver interface {
	Identity(ctx context.Context, userID string) (family.Identity, error)
}

type Service struct {
	repo     Repository
	users    Users
	notifier Notifier
	identity IdentityResolver
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, users Users, notifier Notifier, identity IdentityResolver, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		identity: identity,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Goal, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.TargetAmount <= 0 {
		return nil, ErrInvalidTarget
	}

	participants, err := s.resolveParticipants(ctx, input.CreatorID, input.ParticipantIDs)
	if err != nil {
		return nil, err
	}

	goal := Goal{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    trimOptional(input.Description),
		TargetAmount:   input.TargetAmount,
		Deadline:       input.Deadline,
		CreatorID:      input.CreatorID,
		ParticipantIDs: participants,
	}
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		return tx.CreateGoal(ctx, &goal)
	})
	if err != nil {
		return nil, err
	}

	drafts := make([]notifications.Draft, 0, len(participants))
	for _, userID := range participants {
		drafts = append(drafts, notifications.GoalCreated(userID, goal.Title))
	}
	s.notify(ctx, "goals.create", goal.ID, drafts)

	return &goal, nil
}

func (s *Service) Get(ctx context.Context, callerID, goalID string) (*Goal, error) {
	goal, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.HasAccess(callerID) {
		return nil, ErrNotParticipant
	}
	return goal, nil
}

// ListForUser returns goals userID created or participates in, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, offset, limit int) ([]Goal, int64, error) {
	return s.repo.ListGoalsForUser(ctx, userID, offset, limit)
}

// Contribute records amount against the goal and increments its current
// amount in one store transaction. Completion is checked in the same
// transaction.
func (s *Service) Contribute(ctx context.Context, goalID, contributorID string, amount float64) (*ContributionResult, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	var result ContributionResult
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		goal, err := tx.GetGoalForUpdate(ctx, goalID)
		if err != nil {
			return err
		}
		if !goal.HasAccess(contributorID) {
			return ErrNotParticipant
		}

		contribution := Contribution{
			ID:     uuid.NewString(),
			GoalID: goal.ID,
			UserID: contributorID,
			Amount: amount,
			Date:   s.now().UTC(),
		}
		if err := tx.AddContribution(ctx, &contribution); err != nil {
			return err
		}
		if err := tx.IncrementAmount(ctx, goal.ID, amount); err != nil {
			return err
		}
		goal.CurrentAmount += amount

		completed, err := tx.MarkCompleted(ctx, goal.ID)
		if err != nil {
			return err
		}
		if completed {
			goal.IsCompleted = true
		}

		result = ContributionResult{
			Contribution:   contribution,
			Goal:           *goal,
			BecameComplete: completed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyContribution(ctx, result)
	return &result, nil
}

// CheckCompletion marks the goal completed if its current amount reached the
// target. It reports whether this call completed the goal; a goal already
// completed reports false.
func (s *Service) CheckCompletion(ctx context.Context, goalID string) (bool, error) {
	var (
		goal      *Goal
		completed bool
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		goal, err = tx.GetGoalForUpdate(ctx, goalID)
		if err != nil {
			return err
		}
		completed, err = tx.MarkCompleted(ctx, goalID)
		return err
	})
	if err != nil {
		return false, err
	}

	if completed {
		s.notify(ctx, "goals.check_completion", goal.ID, achievedDrafts(*goal))
	}
	return completed, nil
}

func (s *Service) Progress(ctx context.Context, callerID, goalID string) (*Progress, error) {
	goal, err := s.Get(ctx, callerID, goalID)
	if err != nil {
		return nil, err
	}
	progress := ComputeProgress(*goal, s.now())
	return &progress, nil
}

// ComputeProgress derives the progress view of goal at now. Percentage is 0
// for a non-positive target; days remaining round up and are nil without a
// deadline.
func ComputeProgress(goal Goal, now time.Time) Progress {
	progress := Progress{
		GoalID:        goal.ID,
		Title:         goal.Title,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Remaining:     math.Max(0, goal.TargetAmount-goal.CurrentAmount),
		IsCompleted:   goal.IsCompleted,
		Deadline:      goal.Deadline,
	}
	if goal.TargetAmount > 0 {
		progress.Percentage = goal.CurrentAmount / goal.TargetAmount * 100
	}

	if goal.Deadline != nil {
		days := 0
		if goal.Deadline.After(now) {
			days = int(math.Ceil(goal.Deadline.Sub(now).Hours() / 24))
		}
		progress.DaysRemaining = &days
	}
	return progress
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Goal, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.TargetAmount != nil && *input.TargetAmount <= 0 {
		return nil, ErrInvalidTarget
	}

	var participants []string
	if input.ParticipantIDs != nil {
		var err error
		participants, err = s.resolveParticipants(ctx, input.CallerID, *input.ParticipantIDs)
		if err != nil {
			return nil, err
		}
	}

	var (
		updated   Goal
		completed bool
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		goal, err := tx.GetGoalForUpdate(ctx, input.GoalID)
		if err != nil {
			return err
		}
		if goal.CreatorID != input.CallerID {
			return ErrNotCreator
		}

		if input.Title != nil {
			goal.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			goal.Description = trimOptional(input.Description)
		}
		if input.TargetAmount != nil {
			goal.TargetAmount = *input.TargetAmount
		}
		if input.ClearDeadline {
			goal.Deadline = nil
		} else if input.Deadline != nil {
			goal.Deadline = input.Deadline
		}
		goal.UpdatedAt = s.now().UTC()

		if err := tx.UpdateGoal(ctx, goal); err != nil {
			return err
		}
		if input.ParticipantIDs != nil {
			if err := tx.ReplaceParticipants(ctx, goal.ID, participants); err != nil {
				return err
			}
			goal.ParticipantIDs = participants
		}

		completed, err = tx.MarkCompleted(ctx, goal.ID)
		if err != nil {
			return err
		}
		if completed {
			goal.IsCompleted = true
		}

		updated = *goal
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.notify(ctx, "goals.update", updated.ID, achievedDrafts(updated))
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, callerID, goalID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		goal, err := tx.GetGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if goal.CreatorID != callerID {
			return ErrNotCreator
		}

		deleted, err := tx.DeleteGoal(ctx, goalID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrGoalNotFound
		}
		return nil
	})
}

func (s *Service) ListContributions(ctx context.Context, callerID, goalID string) ([]Contribution, error) {
	if _, err := s.Get(ctx, callerID, goalID); err != nil {
		return nil, err
	}
	return s.repo.ListContributions(ctx, goalID)
}

func (s *Service) ListUserContributions(ctx context.Context, userID string) ([]Contribution, error) {
	return s.repo.ListUserContributions(ctx, userID)
}

// FamilyProgressReport lists goals with progress for the caller's family. A
// head sees every goal created by the family; anyone else sees the goals
// they created or participate in.
func (s *Service) FamilyProgressReport(ctx context.Context, callerID string) ([]GoalReport, error) {
	identity, err := s.identity.Identity(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var items []Goal
	if identity.IsFamilyHead {
		items, err = s.repo.ListGoalsByCreators(ctx, identity.Scope())
	} else {
		items, _, err = s.repo.ListGoalsForUser(ctx, callerID, 0, 0)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []GoalReport{}, nil
	}

	goalIDs := make([]string, 0, len(items))
	creatorIDs := make([]string, 0, len(items))
	for _, goal := range items {
		goalIDs = append(goalIDs, goal.ID)
		creatorIDs = append(creatorIDs, goal.CreatorID)
	}

	counts, err := s.repo.CountContributions(ctx, goalIDs)
	if err != nil {
		return nil, err
	}
	names, err := s.users.Names(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reports := make([]GoalReport, 0, len(items))
	for _, goal := range items {
		name, ok := names[goal.CreatorID]
		if !ok {
			name = "Unknown"
		}
		reports = append(reports, GoalReport{
			Goal:              goal,
			Progress:          ComputeProgress(goal, now),
			CreatorName:       name,
			ContributionCount: counts[goal.ID],
		})
	}
	return reports, nil
}

// resolveParticipants drops the creator, duplicates and unknown user ids.
func (s *Service) resolveParticipants(ctx context.Context, creatorID string, requested []string) ([]string, error) {
	seen := make(map[string]struct{}, len(requested))
	candidates := make([]string, 0, len(requested))
	for _, id := range requested {
		id = strings.TrimSpace(id)
		if id == "" || id == creatorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return []string{}, nil
	}

	existing, err := s.users.ExistingIDs(ctx, candidates)
	if err != nil {
		return nil, err
	}

	if dropped := difference(candidates, existing); len(dropped) > 0 {
		s.log.Warn("goals.participants: dropped unknown user ids", "creator_id", creatorID, "user_ids", dropped)
	}
	return existing, nil
}

func (s *Service) notifyContribution(ctx context.Context, result ContributionResult) {
	goal := result.Goal
	contributorID := result.Contribution.UserID

	names, err := s.users.Names(ctx, []string{contributorID})
	if err != nil {
		s.log.InternalError("goals.contribute: resolve contributor name failed", err, "goal_id", goal.ID)
		names = map[string]string{}
	}
	contributor, ok := names[contributorID]
	if !ok {
		contributor = "Unknown"
	}

	var drafts []notifications.Draft
	for _, userID := range goal.Members() {
		if userID == contributorID {
			continue
		}
		drafts = append(drafts, notifications.GoalContributed(userID, contributor, goal.Title, result.Contribution.Amount))
	}
	if result.BecameComplete {
		drafts = append(drafts, achievedDrafts(goal)...)
	}
	s.notify(ctx, "goals.contribute", goal.ID, drafts)
}

// notify runs after the goal write committed, so failures are only logged.
func (s *Service) notify(ctx context.Context, action, goalID string, drafts []notifications.Draft) {
	if s.notifier == nil || len(drafts) == 0 {
		return
	}
	if _, err := s.notifier.Notify(ctx, drafts...); err != nil {
		s.log.InternalError(action+": notify failed", err, "goal_id", goalID, "count", len(drafts))
	}
}

func achievedDrafts(goal Goal) []notifications.Draft {
	members := goal.Members()
	drafts := make([]notifications.Draft, 0, len(members))
	for _, userID := range members {
		drafts = append(drafts, notifications.GoalAchieved(userID, goal.Title))
	}
	return drafts
}

func difference(all, keep []string) []string {
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}
	var out []string
	for _, id := range all {
		if _, ok := kept[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
