package notifications

import "context"

// Publisher fans persisted notifications out to external consumers.
type Publisher interface {
	Publish(ctx context.Context, item Notification) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Notification) error {
	return nil
}

// Observer receives dispatch outcomes, typically for metrics.
type Observer interface {
	Dispatched(typ Type)
	Deduplicated(typ Type)
	PublishFailed(typ Type)
}

type nopObserver struct{}

func (nopObserver) Dispatched(Type) {}

func (nopObserver) Deduplicated(Type) {}

func (nopObserver) PublishFailed(Type) {}
