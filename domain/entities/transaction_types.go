package entities

// TransactionType represents the reason for a currency change
type TransactionType string

const (
	TransactionTypeBetWin       TransactionType = "bet_win"
	TransactionTypeBetLoss      TransactionType = "bet_loss"
	TransactionTypeShopPurchase TransactionType = "shop_purchase"
	TransactionTypeShopRefund   TransactionType = "shop_refund"
	TransactionTypeAdminGrant   TransactionType = "admin_grant"
	TransactionTypeAdminTake    TransactionType = "admin_take"
)

// IsGamblingRelated returns true if the transaction type comes from a bet
func (tt TransactionType) IsGamblingRelated() bool {
	return tt == TransactionTypeBetWin || tt == TransactionTypeBetLoss
}

// IsAdministrative returns true for manual moderator adjustments
func (tt TransactionType) IsAdministrative() bool {
	return tt == TransactionTypeAdminGrant || tt == TransactionTypeAdminTake
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
