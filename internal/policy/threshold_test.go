package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdGuardBoundary(t *testing.T) {
	g := NewThresholdGuard(5)

	gate := g.Check(4)
	require.NotNil(t, gate)
	assert.Equal(t, 4, gate.ContributorCount)
	assert.Equal(t, 5, gate.MinimumRequired)

	assert.Nil(t, g.Check(5))
	assert.Nil(t, g.Check(100))
}

func TestThresholdGuardZeroContributors(t *testing.T) {
	g := NewThresholdGuard(5)
	gate := g.Check(0)
	require.NotNil(t, gate)
	assert.Equal(t, 0, gate.ContributorCount)
}

func TestThresholdGuardDefaultMinimum(t *testing.T) {
	assert.Equal(t, DefaultMinContributors, NewThresholdGuard(0).Minimum)
	assert.Equal(t, DefaultMinContributors, NewThresholdGuard(-3).Minimum)
	assert.Equal(t, 10, NewThresholdGuard(10).Minimum)
}
