package notifications

import (
	notificationsdomain "family-finance-go/internal/domain/notifications"
	"family-finance-go/pkg/logger"
)

type Handlers struct {
	Notifications *notificationsdomain.Dispatcher
	log           logger.Logger
}

func New(dispatcher *notificationsdomain.Dispatcher, log logger.Logger) *Handlers {
	return &Handlers{
		Notifications: dispatcher,
		log:           log,
	}
}
