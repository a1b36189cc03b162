package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountBelowMinimum = errors.New("withdrawal amount below minimum")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountNotFound    = errors.New("account not found")
	ErrSelfTransfer       = errors.New("cannot transfer to self")
	ErrDuplicateReference = errors.New("reference already processed")
	ErrMissingReference   = errors.New("external reference is required")
	ErrRecordNotFound     = errors.New("transaction not found")
	ErrRetryable          = errors.New("transaction did not complete, retry")
)
