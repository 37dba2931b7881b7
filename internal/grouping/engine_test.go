package grouping

import (
	"math/rand"
	"testing"

	"TradeGate/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(kv ...interface{}) models.Record {
	r := models.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func TestByFieldBasic(t *testing.T) {
	records := []models.Record{
		rec("dealer", "MORGAN STANLEY", "side", "Buy", "currency", "EUR", "size_capped", 5.0),
		rec("dealer", "MORGAN STANLEY", "side", "Sell", "currency", "USD", "size_capped", 3.0),
		rec("dealer", "JPMORGAN", "side", "Buy", "currency", "EUR", "size_capped", 2.0),
	}

	groups := ByField(records, "dealer")
	require.Len(t, groups, 2)

	ms := groups["MORGAN STANLEY"]
	require.NotNil(t, ms)
	assert.Equal(t, 2, ms.Summary.Count)
	assert.Equal(t, 1, ms.Summary.BuyCount)
	assert.Equal(t, 1, ms.Summary.SellCount)
	assert.InDelta(t, 8.0, ms.Summary.TotalVolume, 1e-9)
	assert.Equal(t, []string{"EUR", "USD"}, ms.Summary.Currencies)
	assert.Len(t, ms.Transactions, 2)
}

func TestByFieldUnknownSentinel(t *testing.T) {
	records := []models.Record{
		rec("dealer", "", "side", "Buy"),
		rec("side", "Sell"),
		rec("dealer", nil, "side", "Buy"),
	}

	groups := ByField(records, "dealer")
	require.Len(t, groups, 1)

	unknown := groups[UnknownGroup]
	require.NotNil(t, unknown)
	assert.Equal(t, 3, unknown.Summary.Count)
}

func TestVolumePreference(t *testing.T) {
	records := []models.Record{
		rec("dealer", "A", "size_actual", 10.0, "size_capped", 5.0),
		rec("dealer", "A", "size_capped", 5.0),
		rec("dealer", "A"),
	}

	groups := ByField(records, "dealer")
	assert.InDelta(t, 15.0, groups["A"].Summary.TotalVolume, 1e-9)
}

func TestByPeriodLabels(t *testing.T) {
	records := []models.Record{
		rec("trade_date", "2025-09-15"),
	}

	cases := map[string]string{
		PeriodWeek:    "2025-W38",
		PeriodMonth:   "2025-09",
		PeriodQuarter: "2025-Q3",
		PeriodYear:    "2025",
	}
	for period, want := range cases {
		groups, err := ByPeriod(records, period)
		require.NoError(t, err, period)
		require.Len(t, groups, 1, period)
		assert.Contains(t, groups, want, period)
	}
}

func TestByPeriodISOWeekYearBoundary(t *testing.T) {
	// 2024-12-30 falls in ISO week 1 of 2025.
	groups, err := ByPeriod([]models.Record{rec("trade_date", "2024-12-30")}, PeriodWeek)
	require.NoError(t, err)
	assert.Contains(t, groups, "2025-W01")
}

func TestByPeriodSkipsUnparseableDates(t *testing.T) {
	records := []models.Record{
		rec("trade_date", "2025-09-15", "side", "Buy"),
		rec("trade_date", "not-a-date", "side", "Buy"),
		rec("side", "Sell"),
		rec("trade_date", "2025-09-16T14:30:00", "side", "Sell"),
	}

	groups, err := ByPeriod(records, PeriodMonth)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups["2025-09"].Summary.Count)
}

func TestByPeriodInvalidPeriod(t *testing.T) {
	_, err := ByPeriod(nil, "fortnight")
	require.Error(t, err)
}

func TestSummaryIsOrderIndependent(t *testing.T) {
	records := []models.Record{
		rec("sector", "Financials", "side", "Buy", "currency", "EUR", "size_capped", 1.0),
		rec("sector", "Financials", "side", "Sell", "currency", "GBP", "size_capped", 2.0),
		rec("sector", "Utilities", "side", "Buy", "currency", "EUR", "size_capped", 4.0),
		rec("sector", "Financials", "side", "Buy", "currency", "USD", "size_capped", 8.0),
	}

	want := ByField(records, "sector")

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.Record, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := ByField(shuffled, "sector")
		require.Len(t, got, len(want))
		for key, g := range want {
			assert.Equal(t, g.Summary, got[key].Summary, key)
		}
	}
}

func TestGroupableFields(t *testing.T) {
	assert.True(t, IsGroupableField("dealer"))
	assert.True(t, IsGroupableField("country"))
	assert.False(t, IsGroupableField("week"))
	assert.False(t, IsGroupableField("buy_side"))

	assert.True(t, IsTimeBucket("quarter"))
	assert.False(t, IsTimeBucket("dealer"))
}
