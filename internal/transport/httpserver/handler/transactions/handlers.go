package transactions

import (
	familydomain "family-finance-go/internal/domain/family"
	transactionsdomain "family-finance-go/internal/domain/transactions"
	"family-finance-go/pkg/logger"
)

type Handlers struct {
	Transactions *transactionsdomain.Service
	Families     *familydomain.Service
	log          logger.Logger
}

func New(transactions *transactionsdomain.Service, families *familydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Transactions: transactions,
		Families:     families,
		log:          log,
	}
}
