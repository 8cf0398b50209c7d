package notifications

import (
	"context"
	"time"

	"family-finance-go/internal/domain/family"
	"family-finance-go/pkg/logger"
	"github.com/google/uuid"
)

// IdentityResolver resolves the family relationship of a user.
type IdentityResolver interface {
	Identity(ctx context.Context, userID string) (family.Identity, error)
}

type Dispatcher struct {
	repo      Repository
	identity  IdentityResolver
	publisher Publisher
	observer  Observer
	log       logger.Logger
	now       func() time.Time
}

func NewDispatcher(repo Repository, identity IdentityResolver, publisher Publisher, observer Observer, log logger.Logger) *Dispatcher {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		repo:      repo,
		identity:  identity,
		publisher: publisher,
		observer:  observer,
		log:       log,
		now:       time.Now,
	}
}

// Notify persists every draft in one store transaction.
func (d *Dispatcher) Notify(ctx context.Context, drafts ...Draft) ([]Notification, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	items := d.build(drafts)
	if err := d.repo.Create(ctx, items); err != nil {
		return nil, err
	}

	d.afterCommit(ctx, items)
	return items, nil
}

// DispatchOnce inserts draft unless the user already has a notification of
// the draft's type, or of any of suppressedBy, with created_at in [from, to).
// The check and insert happen atomically. The returned bool reports whether
// a notification was created.
func (d *Dispatcher) DispatchOnce(ctx context.Context, draft Draft, from, to time.Time, suppressedBy ...Type) (*Notification, bool, error) {
	types := append([]Type{draft.Type}, suppressedBy...)

	var created *Notification
	err := d.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockDedup(ctx, draft.UserID); err != nil {
			return err
		}

		exists, err := tx.ExistsInWindow(ctx, draft.UserID, types, from, to)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		items := d.build([]Draft{draft})
		if err := tx.Create(ctx, items); err != nil {
			return err
		}
		created = &items[0]
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created == nil {
		d.observer.Deduplicated(draft.Type)
		return nil, false, nil
	}

	d.afterCommit(ctx, []Notification{*created})
	return created, true, nil
}

func (d *Dispatcher) List(ctx context.Context, userID string, filter ListFilter) ([]Notification, int64, error) {
	return d.repo.List(ctx, userID, filter)
}

// Get returns the caller's notification; other users' ids are reported as
// not found.
func (d *Dispatcher) Get(ctx context.Context, userID, id string) (*Notification, error) {
	item, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrNotificationNotFound
	}
	return item, nil
}

func (d *Dispatcher) MarkRead(ctx context.Context, userID, id string, isRead bool) (*Notification, error) {
	item, err := d.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item.IsRead == isRead {
		return item, nil
	}

	if err := d.repo.SetRead(ctx, id, isRead); err != nil {
		return nil, err
	}
	item.IsRead = isRead
	return item, nil
}

// MarkAllRead flips every unread notification of userID and returns how many
// changed.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return d.repo.MarkAllRead(ctx, userID)
}

func (d *Dispatcher) Delete(ctx context.Context, userID, id string) error {
	if _, err := d.Get(ctx, userID, id); err != nil {
		return err
	}

	deleted, err := d.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotificationNotFound
	}
	return nil
}

// CreateManual sends a manual notification. Callers may notify themselves;
// a family head may also notify the members of their family.
func (d *Dispatcher) CreateManual(ctx context.Context, callerID, targetUserID, title, body string) (*Notification, error) {
	draft := Manual(targetUserID, title, body)
	if err := validateManual(draft); err != nil {
		return nil, err
	}

	if targetUserID != callerID {
		identity, err := d.identity.Identity(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if !identity.IsFamilyHead || !identity.HasMember(targetUserID) {
			return nil, ErrForbidden
		}
	}

	items, err := d.Notify(ctx, draft)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// FamilyBroadcast sends a manual notification to the head and every member
// of the caller's family. Only heads may broadcast.
func (d *Dispatcher) FamilyBroadcast(ctx context.Context, callerID, title, body string) ([]Notification, error) {
	if err := validateManual(Manual(callerID, title, body)); err != nil {
		return nil, err
	}

	identity, err := d.identity.Identity(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !identity.IsFamilyHead {
		return nil, ErrForbidden
	}

	scope := identity.Scope()
	drafts := make([]Draft, 0, len(scope))
	for _, userID := range scope {
		drafts = append(drafts, Manual(userID, title, body))
	}
	return d.Notify(ctx, drafts...)
}

func (d *Dispatcher) build(drafts []Draft) []Notification {
	now := d.now().UTC()
	items := make([]Notification, 0, len(drafts))
	for _, draft := range drafts {
		items = append(items, Notification{
			ID:        uuid.NewString(),
			Title:     draft.Title,
			Message:   draft.Message,
			Type:      draft.Type,
			UserID:    draft.UserID,
			CreatedAt: now,
		})
	}
	return items
}

func (d *Dispatcher) afterCommit(ctx context.Context, items []Notification) {
	for _, item := range items {
		d.observer.Dispatched(item.Type)
		if err := d.publisher.Publish(ctx, item); err != nil {
			d.observer.PublishFailed(item.Type)
			d.log.InternalError("notifications.publish: failed", err, "notification_id", item.ID, "type", string(item.Type))
		}
	}
}

func validateManual(draft Draft) error {
	if draft.Title == "" {
		return ErrTitleRequired
	}
	if draft.Message == "" {
		return ErrMessageRequired
	}
	return nil
}
