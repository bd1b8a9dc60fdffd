package shop

import (
	"guildkeeper/application"
)

// Feature serves the role shop and its admin commands
type Feature struct {
	uowFactory   application.UnitOfWorkFactory
	transactions *application.EconomyTransactions
}

// New creates a new shop feature
func New(uowFactory application.UnitOfWorkFactory, transactions *application.EconomyTransactions) *Feature {
	return &Feature{
		uowFactory:   uowFactory,
		transactions: transactions,
	}
}
