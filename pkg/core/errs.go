package core

import "errors"

var (
	ErrEmptyAccount      = errors.New("account has no balances")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientFunds = errors.New("insufficient funds or locked")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrOrderNotFound     = errors.New("order not found")

	ErrUnknownStrategy   = errors.New("unknown strategy")
	ErrDuplicateStrategy = errors.New("strategy already registered")
	ErrInvalidParameter  = errors.New("invalid parameter")
)
