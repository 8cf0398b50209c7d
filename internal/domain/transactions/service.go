package transactions

import (
	"context"
	"strings"
	"time"

	"family-finance-go/pkg/logger"
	"github.com/google/uuid"
)

// BudgetChecker is notified after an expense is written for userID.
type BudgetChecker interface {
	Check(ctx context.Context, userID string) error
}

type Service struct {
	repo   Repository
	budget BudgetChecker
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, budget BudgetChecker, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:   repo,
		budget: budget,
		log:    log,
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transaction, int64, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, 0, ErrInvalidType
	}
	if filter.Category != nil && !filter.Category.Valid() {
		return nil, 0, ErrInvalidCategory
	}
	if len(filter.UserIDs) == 0 {
		return []Transaction{}, 0, nil
	}
	return s.repo.List(ctx, filter)
}

// Get returns a transaction owned by callerID.
func (s *Service) Get(ctx context.Context, callerID, id string) (*Transaction, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != callerID {
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Transaction, error) {
	if err := validate(input.Amount, input.Type, input.Category); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	item := Transaction{
		ID:          uuid.Must(uuid.NewV7()).String(),
		UserID:      input.UserID,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Type:        input.Type,
		Category:    input.Category,
		Date:        date.UTC(),
	}
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, &item)
	return &item, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Transaction, error) {
	var updated Transaction
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		item, err := tx.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if item.UserID != input.CallerID {
			return ErrForbidden
		}

		if input.Amount != nil {
			item.Amount = *input.Amount
		}
		if input.Description != nil {
			item.Description = strings.TrimSpace(*input.Description)
		}
		if input.Type != nil {
			item.Type = *input.Type
		}
		if input.Category != nil {
			item.Category = *input.Category
		}
		if input.Date != nil {
			item.Date = input.Date.UTC()
		}
		if err := validate(item.Amount, item.Type, item.Category); err != nil {
			return err
		}
		item.UpdatedAt = s.now().UTC()

		if err := tx.Update(ctx, item); err != nil {
			return err
		}
		updated = *item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, &updated)
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		item, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item.UserID != callerID {
			return ErrForbidden
		}

		deleted, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrTransactionNotFound
		}
		return nil
	})
}

// afterWrite runs the budget check for expenses. The write is already
// committed, so a failing check is logged and not returned.
func (s *Service) afterWrite(ctx context.Context, item *Transaction) {
	if s.budget == nil || item.Type != TypeExpense {
		return
	}
	if err := s.budget.Check(ctx, item.UserID); err != nil {
		s.log.InternalError("transactions.budget_check: failed", err, "user_id", item.UserID, "transaction_id", item.ID)
	}
}

func validate(amount float64, typ Type, category Category) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !typ.Valid() {
		return ErrInvalidType
	}
	if !category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}
