package policy

// DefaultMinContributors is the disclosure minimum for aggregate figures.
const DefaultMinContributors = 5

// GateResult carries the gating failure of the contributor threshold.
// It is a normal response variant, not an error.
type GateResult struct {
	ContributorCount int
	MinimumRequired  int
}

// ThresholdGuard decides whether an aggregation over a window may be
// disclosed, from the count of distinct counterparties in that window.
// The count itself is computed from uncapped internal data and is only
// ever used as a gate.
type ThresholdGuard struct {
	Minimum int
}

// NewThresholdGuard returns a guard with the given minimum, falling back
// to the default when min is not positive.
func NewThresholdGuard(min int) ThresholdGuard {
	if min <= 0 {
		min = DefaultMinContributors
	}
	return ThresholdGuard{Minimum: min}
}

// Check returns nil when the count passes, or the gating result that must
// become the entire response when it does not.
func (g ThresholdGuard) Check(count int) *GateResult {
	if count < g.Minimum {
		return &GateResult{ContributorCount: count, MinimumRequired: g.Minimum}
	}
	return nil
}
