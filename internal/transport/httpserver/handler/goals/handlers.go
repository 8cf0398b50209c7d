package goals

import (
	goalsdomain "family-finance-go/internal/domain/goals"
	"family-finance-go/pkg/logger"
)

type Handlers struct {
	Goals *goalsdomain.Service
	log   logger.Logger
}

func New(goals *goalsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Goals: goals,
		log:   log,
	}
}
