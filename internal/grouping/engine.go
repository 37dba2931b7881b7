// Package grouping partitions an already-authorized record set into
// groups and computes per-group summaries in a single pass. It never
// re-applies access or lag policy; it strictly consumes rows the access
// layer released.
package grouping

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"TradeGate/internal/domain/models"
)

// UnknownGroup labels rows whose group field is absent or empty in field
// grouping. Time-bucket grouping has no such bucket: rows with an
// unparseable trade date are skipped entirely.
const UnknownGroup = "Unknown"

// Time-bucket names accepted as group_by values.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// IsTimeBucket reports whether name selects time-bucket grouping.
func IsTimeBucket(name string) bool {
	switch name {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// groupableFields is the set of projected record fields accepted for
// field grouping. Anything outside this set (and the time buckets) is a
// validation error at the facade.
var groupableFields = map[string]struct{}{
	"trade_date": {}, "side": {}, "isin": {}, "ticker": {}, "venue": {},
	"currency": {}, "dealer": {}, "dealer_abbrev": {}, "sector": {},
	"country": {}, "region": {}, "seniority": {}, "credit_grade": {},
	"bond_category": {}, "entity_name": {},
}

// IsGroupableField reports whether name is a recognized record field.
func IsGroupableField(name string) bool {
	_, ok := groupableFields[name]
	return ok
}

// ByField groups records by the value of the named field, using the
// Unknown sentinel for absent or empty values.
func ByField(records []models.Record, field string) map[string]*models.Group {
	groups := make(map[string]*models.Group)
	acc := make(map[string]*accumulator)

	for _, rec := range records {
		key := rec.String(field)
		if key == "" {
			key = UnknownGroup
		}
		add(groups, acc, key, rec)
	}

	finalize(groups, acc)
	return groups
}

// ByPeriod groups records into calendar buckets derived from each row's
// trade date. Rows with a missing or unparseable trade date appear in no
// group.
func ByPeriod(records []models.Record, period string) (map[string]*models.Group, error) {
	if !IsTimeBucket(period) {
		return nil, fmt.Errorf("invalid period: %q, must be 'week', 'month', 'quarter', or 'year'", period)
	}

	groups := make(map[string]*models.Group)
	acc := make(map[string]*accumulator)

	for _, rec := range records {
		day, ok := tradeDay(rec)
		if !ok {
			continue
		}
		add(groups, acc, bucketLabel(day, period), rec)
	}

	finalize(groups, acc)
	return groups, nil
}

// accumulator holds the currency set during the pass; the summary's
// slice form is produced once at finalize.
type accumulator struct {
	currencies map[string]struct{}
}

// add folds one record into its group. The reduction is commutative and
// associative, so accumulation order never affects the final summary.
func add(groups map[string]*models.Group, acc map[string]*accumulator, key string, rec models.Record) {
	g, ok := groups[key]
	if !ok {
		g = &models.Group{Summary: &models.GroupSummary{}}
		groups[key] = g
		acc[key] = &accumulator{currencies: make(map[string]struct{})}
	}

	g.Transactions = append(g.Transactions, rec)
	g.Summary.Count++
	g.Summary.TotalVolume += volumeOf(rec)

	switch rec.String("side") {
	case "Buy":
		g.Summary.BuyCount++
	case "Sell":
		g.Summary.SellCount++
	}

	if cur := rec.String("currency"); cur != "" {
		acc[key].currencies[cur] = struct{}{}
	}
}

func finalize(groups map[string]*models.Group, acc map[string]*accumulator) {
	for key, g := range groups {
		set := acc[key].currencies
		currencies := make([]string, 0, len(set))
		for cur := range set {
			currencies = append(currencies, cur)
		}
		sort.Strings(currencies)
		g.Summary.Currencies = currencies
	}
}

// volumeOf prefers the uncapped size when the row carries one, then the
// capped size, then zero.
func volumeOf(rec models.Record) float64 {
	if v, ok := rec.Float("size_actual"); ok && v != 0 {
		return v
	}
	if v, ok := rec.Float("size_capped"); ok {
		return v
	}
	return 0
}

// tradeDay parses the row's trade date, tolerating a timestamp suffix.
func tradeDay(rec models.Record) (time.Time, bool) {
	raw := rec.String("trade_date")
	if raw == "" {
		return time.Time{}, false
	}
	day := strings.SplitN(raw, "T", 2)[0]
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func bucketLabel(day time.Time, period string) string {
	switch period {
	case PeriodWeek:
		year, week := day.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonth:
		return day.Format("2006-01")
	case PeriodQuarter:
		quarter := (int(day.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", day.Year(), quarter)
	default: // PeriodYear
		return fmt.Sprintf("%d", day.Year())
	}
}
