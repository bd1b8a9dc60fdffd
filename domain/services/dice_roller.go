package services

import (
	"math/rand"

	"guildkeeper/domain/interfaces"
)

type randomRoller struct{}

// NewRandomRoller returns a roller backed by math/rand
func NewRandomRoller() interfaces.DiceRoller {
	return randomRoller{}
}

func (randomRoller) Roll() int {
	return rand.Intn(100) + 1
}
