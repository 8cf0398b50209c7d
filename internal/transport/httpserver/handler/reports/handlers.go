package reports

import (
	familydomain "family-finance-go/internal/domain/family"
	goalsdomain "family-finance-go/internal/domain/goals"
	reportsdomain "family-finance-go/internal/domain/reports"
	"family-finance-go/pkg/logger"
)

type Handlers struct {
	Reports  *reportsdomain.Service
	Goals    *goalsdomain.Service
	Families *familydomain.Service
	log      logger.Logger
}

func New(reports *reportsdomain.Service, goals *goalsdomain.Service, families *familydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Reports:  reports,
		Goals:    goals,
		Families: families,
		log:      log,
	}
}
