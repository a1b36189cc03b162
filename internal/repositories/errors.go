package repositories

import "errors"

// Sentinel errors surfaced by the data access layer. Callers match them with
// errors.Is; anything else is an infrastructure failure.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
)
