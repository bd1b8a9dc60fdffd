package entities

// BetResult is the outcome of a single bet
type BetResult struct {
	Amount     int64
	Roll       int // Uniform in [1, 100]
	WinChance  int
	Won        bool
	NewBalance int64
}
