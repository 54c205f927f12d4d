package checkout

import "errors"

var (
	ErrEmptyIntent   = errors.New("purchase intent is empty, nothing to pay")
	ErrAuthRequired  = errors.New("authentication required before payment")
	ErrInvalidAmount = errors.New("payable amount must be positive")
	ErrNoAttempt     = errors.New("no checkout attempt in flight")
	ErrUnknownOrder  = errors.New("payment result does not match the in-flight order")
	ErrAttemptFailed = errors.New("checkout attempt already failed verification")
)
