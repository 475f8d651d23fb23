package guard

// RetryBudget tracks how many generation attempts the orchestration layer
// may spend before it must fall back to presenting the ground truth with no
// AI-authored prose. The validator itself stays stateless; the budget
// belongs to the caller driving the generate-validate loop.
type RetryBudget struct {
	max  int
	used int
}

// NewRetryBudget allows max attempts. A non-positive max allows none.
func NewRetryBudget(max int) (budget *RetryBudget) {
	budget = &RetryBudget{max: max}
	return budget
}

// Spend consumes one attempt. It returns false when the budget was already
// exhausted, in which case nothing is consumed.
func (b *RetryBudget) Spend() (ok bool) {
	if b.used >= b.max {
		return false
	}
	b.used++
	return true
}

// Exhausted reports whether no attempts remain.
func (b *RetryBudget) Exhausted() (exhausted bool) {
	exhausted = b.used >= b.max
	return exhausted
}

// Remaining returns the number of attempts left.
func (b *RetryBudget) Remaining() (remaining int) {
	remaining = b.max - b.used
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
