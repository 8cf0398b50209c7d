package handler

import (
	"family-finance-go/internal/transport/httpserver/handler/common"
	"family-finance-go/internal/transport/httpserver/handler/goals"
	"family-finance-go/internal/transport/httpserver/handler/notifications"
	"family-finance-go/internal/transport/httpserver/handler/reports"
	"family-finance-go/internal/transport/httpserver/handler/transactions"
)

type Handlers struct {
	Common        *common.Handlers
	Transactions  *transactions.Handlers
	Goals         *goals.Handlers
	Notifications *notifications.Handlers
	Reports       *reports.Handlers
}

func New(
	commonHandlers *common.Handlers,
	transactionHandlers *transactions.Handlers,
	goalHandlers *goals.Handlers,
	notificationHandlers *notifications.Handlers,
	reportHandlers *reports.Handlers,
) *Handlers {
	return &Handlers{
		Common:        commonHandlers,
		Transactions:  transactionHandlers,
		Goals:         goalHandlers,
		Notifications: notificationHandlers,
		Reports:       reportHandlers,
	}
}
