package common

import (
	familydomain "family-finance-go/internal/domain/family"
	userdomain "family-finance-go/internal/domain/user"
	"family-finance-go/pkg/logger"
)

type Handlers struct {
	Families *familydomain.Service
	Users    *userdomain.Service
	log      logger.Logger
}

func New(families *familydomain.Service, users *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Families: families,
		Users:    users,
		log:      log,
	}
}
