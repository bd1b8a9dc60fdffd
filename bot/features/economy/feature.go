package economy

import (
	"guildkeeper/application"
)

// Feature serves balance, wallet, bet and admin currency commands
type Feature struct {
	uowFactory   application.UnitOfWorkFactory
	transactions *application.EconomyTransactions
}

// New creates a new economy feature
func New(uowFactory application.UnitOfWorkFactory, transactions *application.EconomyTransactions) *Feature {
	return &Feature{
		uowFactory:   uowFactory,
		transactions: transactions,
	}
}
