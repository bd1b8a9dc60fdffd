package interfaces

import "errors"

// Validation errors
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidSetting    = errors.New("invalid setting value")
	ErrItemNotFound      = errors.New("shop item not found")
	ErrDuplicateShopItem = errors.New("role is already listed in the shop")
	ErrSelfWarn          = errors.New("members cannot warn themselves")
)

// Economic errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// External action errors
var (
	ErrEntitlementAlreadyHeld = errors.New("member already holds this role")
	ErrEntitlementGrantFailed = errors.New("failed to grant role")
	ErrActuatorForbidden      = errors.New("missing permissions for external action")
	ErrTargetNotFound         = errors.New("target not found")
)

// Lookup errors
var (
	ErrWarningNotFound = errors.New("warning not found")
)
