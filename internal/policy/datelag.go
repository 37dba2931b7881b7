package policy

import (
	"fmt"
	"time"
)

const (
	// DayFormat is the calendar-date form used at the public boundary.
	DayFormat = "2006-01-02"
	// abbrevDayFormat is the form the totals path binds into the dataset
	// (e.g. "01-Aug-25"). Internal detail of the lag/format step.
	abbrevDayFormat = "02-Jan-06"

	// DefaultLagDays delays the market data-visibility horizon.
	DefaultLagDays = 30
)

// DateRange is an inclusive calendar-day window with From <= To.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses boundary-form dates and rejects malformed input
// and inverted windows before any lag computation runs.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.Parse(DayFormat, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("malformed date_from %q: must be YYYY-MM-DD", from)
	}
	t, err := time.Parse(DayFormat, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("malformed date_to %q: must be YYYY-MM-DD", to)
	}
	if f.After(t) {
		return DateRange{}, fmt.Errorf("date_from %s is after date_to %s", from, to)
	}
	return DateRange{From: f, To: t}, nil
}

// Strings returns the range in boundary form.
func (r DateRange) Strings() (string, string) {
	return r.From.Format(DayFormat), r.To.Format(DayFormat)
}

// Abbrev returns the range in the dataset's abbreviated day form.
func (r DateRange) Abbrev() (string, string) {
	return r.From.Format(abbrevDayFormat), r.To.Format(abbrevDayFormat)
}

// HalfOpen returns bounds for a half-open day comparison: rows qualify
// when trade_date >= from AND trade_date < to+1d, so the final day's
// intraday timestamps are included.
func (r DateRange) HalfOpen() (string, string) {
	return r.From.Format(DayFormat), r.To.AddDate(0, 0, 1).Format(DayFormat)
}

// LagPolicy computes the permitted date window for an operation. Now is
// injectable for deterministic tests and defaults to time.Now.
type LagPolicy struct {
	LagDays int
	Now     func() time.Time
}

// NewLagPolicy returns a lag policy with the given lag in days.
func NewLagPolicy(lagDays int) LagPolicy {
	return LagPolicy{LagDays: lagDays, Now: time.Now}
}

// Shift moves both ends of the window backward by the lag, keeping the
// window length constant. Used by aggregate totals.
func (p LagPolicy) Shift(r DateRange) DateRange {
	return DateRange{
		From: r.From.AddDate(0, 0, -p.LagDays),
		To:   r.To.AddDate(0, 0, -p.LagDays),
	}
}

// Cap truncates the window end at today minus the lag, leaving the start
// unchanged. A window already older than the cutoff passes through
// unchanged. Used by MARKET transaction history.
func (p LagPolicy) Cap(r DateRange) DateRange {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	y, m, d := now.AddDate(0, 0, -p.LagDays).Date()
	maxAllowed := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	capped := r
	if capped.To.After(maxAllowed) {
		capped.To = maxAllowed
	}
	return capped
}
