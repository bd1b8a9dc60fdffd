package moderation

import (
	"guildkeeper/application"
)

// Feature serves warn, warnings and unwarn
type Feature struct {
	uowFactory  application.UnitOfWorkFactory
	coordinator *application.EnforcementCoordinator
}

// New creates a new moderation feature
func New(uowFactory application.UnitOfWorkFactory, coordinator *application.EnforcementCoordinator) *Feature {
	return &Feature{
		uowFactory:  uowFactory,
		coordinator: coordinator,
	}
}
