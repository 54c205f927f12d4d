package domain

// AttemptStatus is the state of a single checkout attempt.
type AttemptStatus string

const (
	AttemptStatusAwaitingPayment AttemptStatus = "AWAITING_PAYMENT"
	AttemptStatusVerifying       AttemptStatus = "VERIFYING"
	AttemptStatusSettled         AttemptStatus = "SETTLED"
	AttemptStatusFailed          AttemptStatus = "FAILED"
)

func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusSettled || s == AttemptStatusFailed
}

// String representation (for logging)
func (s AttemptStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether an attempt may move from one status to
// another. Duplicate gateway callbacks land outside these edges and are
// treated as no-ops by the caller.
func CanTransitionTo(from, to AttemptStatus) bool {
	switch from {
	case AttemptStatusAwaitingPayment:
		return to == AttemptStatusVerifying || to == AttemptStatusFailed
	case AttemptStatusVerifying:
		return to == AttemptStatusSettled || to == AttemptStatusFailed
	default:
		return false
	}
}
