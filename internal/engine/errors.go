package engine

import "errors"

// Business rejections. These are expected, user-facing outcomes of
// placement; they never roll back unrelated work and never retry.
var (
	ErrAgreementNotSigned  = errors.New("user has to sign the agreement first")
	ErrInsufficientBalance = errors.New("user balance is not enough")
	ErrRateUnavailable     = errors.New("no exchange rate published for currency")
	ErrInvalidAmount       = errors.New("order amount must be positive")
)
