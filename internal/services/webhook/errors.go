package webhook

import "errors"

// Service errors
var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingEvent     = errors.New("event is missing from payload")
	ErrMissingFields    = errors.New("missing payment details")
	ErrAccountNotFound  = errors.New("no account for payer")
)
