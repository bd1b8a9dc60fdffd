package settings

import (
	"guildkeeper/application"
)

// Feature serves the guild configuration commands
type Feature struct {
	uowFactory application.UnitOfWorkFactory
}

// New creates a new settings feature
func New(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{uowFactory: uowFactory}
}
