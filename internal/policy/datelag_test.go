package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2025-08-01", "2025-10-31")
	require.NoError(t, err)

	from, to := r.Strings()
	assert.Equal(t, "2025-08-01", from)
	assert.Equal(t, "2025-10-31", to)
}

func TestParseDateRangeMalformed(t *testing.T) {
	_, err := ParseDateRange("01-08-2025", "2025-10-31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date_from")

	_, err = ParseDateRange("2025-08-01", "31-Oct-25")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date_to")
}

func TestParseDateRangeInverted(t *testing.T) {
	_, err := ParseDateRange("2025-10-31", "2025-08-01")
	require.Error(t, err)
}

func TestShiftPreservesWindowLength(t *testing.T) {
	p := NewLagPolicy(30)
	r, err := ParseDateRange("2025-08-01", "2025-10-31")
	require.NoError(t, err)

	shifted := p.Shift(r)
	assert.Equal(t, r.To.Sub(r.From), shifted.To.Sub(shifted.From))

	from, to := shifted.Strings()
	assert.Equal(t, "2025-07-02", from)
	assert.Equal(t, "2025-10-01", to)
}

func TestShiftAbbrevForm(t *testing.T) {
	p := NewLagPolicy(30)
	r, err := ParseDateRange("2025-08-01", "2025-10-31")
	require.NoError(t, err)

	from, to := p.Shift(r).Abbrev()
	assert.Equal(t, "02-Jul-25", from)
	assert.Equal(t, "01-Oct-25", to)
}

func TestCapTruncatesRecentEnd(t *testing.T) {
	p := LagPolicy{
		LagDays: 30,
		Now: func() time.Time {
			return time.Date(2025, 11, 15, 9, 30, 0, 0, time.UTC)
		},
	}
	r, err := ParseDateRange("2025-09-01", "2025-11-10")
	require.NoError(t, err)

	capped := p.Cap(r)
	from, to := capped.Strings()
	assert.Equal(t, "2025-09-01", from, "start must pass through unchanged")
	assert.Equal(t, "2025-10-16", to)
}

func TestCapLeavesOldWindowAlone(t *testing.T) {
	p := LagPolicy{
		LagDays: 30,
		Now: func() time.Time {
			return time.Date(2025, 11, 15, 9, 30, 0, 0, time.UTC)
		},
	}
	r, err := ParseDateRange("2025-01-01", "2025-03-31")
	require.NoError(t, err)

	capped := p.Cap(r)
	assert.Equal(t, r, capped)
}

func TestCapIsIdempotent(t *testing.T) {
	p := LagPolicy{
		LagDays: 30,
		Now: func() time.Time {
			return time.Date(2025, 11, 15, 23, 59, 59, 0, time.UTC)
		},
	}
	r, err := ParseDateRange("2025-09-01", "2025-11-14")
	require.NoError(t, err)

	once := p.Cap(r)
	twice := p.Cap(once)
	assert.Equal(t, once, twice)
}

func TestHalfOpenAddsOneDay(t *testing.T) {
	r, err := ParseDateRange("2025-08-01", "2025-08-31")
	require.NoError(t, err)

	from, to := r.HalfOpen()
	assert.Equal(t, "2025-08-01", from)
	assert.Equal(t, "2025-09-01", to)
}

func TestZeroLagIsIdentityShift(t *testing.T) {
	p := NewLagPolicy(0)
	r, err := ParseDateRange("2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.Equal(t, r, p.Shift(r))
}
