package leaderboard

import (
	"guildkeeper/application"
)

// Feature serves the activity and currency rankings
type Feature struct {
	uowFactory application.UnitOfWorkFactory
}

// New creates a new leaderboard feature
func New(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{uowFactory: uowFactory}
}
