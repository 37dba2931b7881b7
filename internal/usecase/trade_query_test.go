package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/policy"
	"TradeGate/pkg/cache"
	xhttp "TradeGate/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCall struct {
	query  string
	params []interface{}
}

// fakeExecutor returns canned result sets in call order and records every
// query it receives.
type fakeExecutor struct {
	calls   []capturedCall
	results []*models.ResultSet
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, query string, params []interface{}) (*models.ResultSet, error) {
	f.calls = append(f.calls, capturedCall{query: query, params: params})
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.calls) - 1
	if i < len(f.results) {
		return f.results[i], nil
	}
	return &models.ResultSet{Data: []models.Record{}}, nil
}

type fixedIdentity struct {
	id string
}

func (f fixedIdentity) CurrentClientIdentity() (string, bool) {
	return f.id, f.id != ""
}

func rows(recs ...models.Record) *models.ResultSet {
	return &models.ResultSet{Data: recs}
}

func contributorRow(n int) *models.ResultSet {
	return rows(models.Record{"contributor_count": float64(n)})
}

func newTestService(exec *fakeExecutor, id string, opts ...Option) *SecureQueryService {
	base := []Option{
		WithLagPolicy(policy.LagPolicy{
			LagDays: 30,
			Now: func() time.Time {
				return time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC)
			},
		}),
	}
	return NewSecureQueryService(exec, fixedIdentity{id: id}, append(base, opts...)...)
}

func TestAggregateTotals(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		contributorRow(8),
		rows(models.Record{
			"total_volume_eur": 1000.0,
			"buy_volume_eur":   600.0,
			"sell_volume_eur":  400.0,
			"total_trades":     50.0,
			"buy_trades":       30.0,
			"sell_trades":      20.0,
		}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.NoError(t, err)
	require.NotNil(t, res.Totals)
	require.Nil(t, res.Insufficient)

	totals := res.Totals
	assert.InDelta(t, 60.0, totals.BuyPct, 1e-9)
	assert.InDelta(t, 40.0, totals.SellPct, 1e-9)
	assert.Equal(t, 50, totals.TotalTrades)
	assert.Equal(t, 8, totals.ContributorCount)
	assert.Equal(t, 30, totals.LagAppliedDays)

	// Both effective and requested windows are reported.
	assert.Equal(t, "02-Jul-25", totals.PeriodStart)
	assert.Equal(t, "01-Oct-25", totals.PeriodEnd)
	assert.Equal(t, "2025-08-01", totals.OriginalPeriodStart)
	assert.Equal(t, "2025-10-31", totals.OriginalPeriodEnd)

	require.Len(t, exec.calls, 2)
	assert.Contains(t, exec.calls[0].query, "COUNT(DISTINCT buy_side) as contributor_count")
	assert.Equal(t, []interface{}{"02-Jul-25", "01-Oct-25"}, exec.calls[0].params)
	assert.Equal(t, exec.calls[0].params, exec.calls[1].params)
}

func TestAggregateTotalsGated(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{contributorRow(3)}}
	svc := newTestService(exec, "")

	res, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.NoError(t, err)
	require.Nil(t, res.Totals, "gated response must carry no partial totals")
	require.NotNil(t, res.Insufficient)

	assert.Equal(t, 3, res.Insufficient.ContributorCount)
	assert.Equal(t, 5, res.Insufficient.MinimumRequired)
	assert.Len(t, exec.calls, 1, "totals query must not run after gating")
}

func TestAggregateTotalsGateBoundary(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		contributorRow(5),
		rows(models.Record{"total_volume_eur": 10.0}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.NoError(t, err)
	assert.Nil(t, res.Insufficient)
	assert.NotNil(t, res.Totals)
}

func TestAggregateTotalsZeroVolume(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		contributorRow(7),
		rows(models.Record{"total_volume_eur": 0.0, "total_trades": 0.0}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.NoError(t, err)
	require.NotNil(t, res.Totals)
	assert.Zero(t, res.Totals.BuyPct)
	assert.Zero(t, res.Totals.SellPct)
}

func TestAggregateTotalsPercentageRounding(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		contributorRow(7),
		rows(models.Record{
			"total_volume_eur": 3.0,
			"buy_volume_eur":   1.0,
			"sell_volume_eur":  2.0,
		}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.NoError(t, err)
	assert.Equal(t, 33.33, res.Totals.BuyPct)
	assert.Equal(t, 66.67, res.Totals.SellPct)
}

func TestAggregateTotalsMalformedDates(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newTestService(exec, "")

	_, err := svc.AggregateTotals(context.Background(), "08/01/2025", "2025-10-31")
	require.Error(t, err)

	var appErr *xhttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, exec.calls, "validation must fail before any network call")
}

func TestAggregateTotalsExecutorFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("upstream 503")}
	svc := newTestService(exec, "")

	_, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.Error(t, err)

	var appErr *xhttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.Status)
}

func TestQueryRecordsMarket(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(models.Record{"trade_date": "2025-09-01", "side": "Buy"}),
		rows(models.Record{"total": 42.0}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
		Context:  "MARKET",
		Limit:    10,
		Offset:   0,
	})
	require.NoError(t, err)
	require.NotNil(t, res.List)
	require.Nil(t, res.Grouped)

	list := res.List
	assert.Equal(t, "MARKET", list.Context)
	assert.Equal(t, 42, list.Pagination.Total)
	assert.Equal(t, 30, list.LagAppliedDays)
	assert.Empty(t, list.ClientID)
	assert.Contains(t, list.Note, "lag applied")

	require.Len(t, exec.calls, 2)
	data := exec.calls[0]
	assert.Contains(t, data.query, "ORDER BY trade_date DESC, trade_time DESC")
	assert.Contains(t, data.query, "LIMIT ? OFFSET ?")
	assert.NotContains(t, data.query, "buy_side")
	// Half-open window with the requested bounds (older than the cap).
	assert.Equal(t, []interface{}{"2025-09-01", "2025-10-01", 10, 0}, data.params)
}

func TestQueryRecordsMarketCapsRecentWindow(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(),
		rows(models.Record{"total": 0.0}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-11-14",
		Context:  "MARKET",
		Limit:    10,
	})
	require.NoError(t, err)

	// Now is 2025-11-15; the cap is 2025-10-16.
	assert.Equal(t, "2025-10-16", res.List.PeriodEnd)
	assert.Equal(t, "2025-11-14", res.List.OriginalPeriodEnd)
	assert.Equal(t, "2025-10-17", exec.calls[0].params[1], "half-open upper bound follows the capped end")
}

func TestQueryRecordsClient(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(models.Record{"trade_date": "2025-11-10", "side": "Sell"}),
		rows(models.Record{"total": 1.0}),
	}}
	svc := newTestService(exec, "Client 1")

	res, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-11-01",
		DateTo:   "2025-11-14",
		Context:  "CLIENT",
		Filters:  policy.FilterSpec{"side": "Sell"},
		Limit:    10,
	})
	require.NoError(t, err)

	list := res.List
	assert.Equal(t, "CLIENT", list.Context)
	assert.Equal(t, "Client 1", list.ClientID)
	assert.Zero(t, list.LagAppliedDays, "no lag in CLIENT context")
	assert.Equal(t, "2025-11-14", list.PeriodEnd)

	data := exec.calls[0]
	assert.Contains(t, data.query, "buy_side = ?")
	require.GreaterOrEqual(t, len(data.params), 4)
	assert.Equal(t, "Client 1", data.params[0], "identity binds before every other parameter")
	assert.Equal(t, "2025-11-01", data.params[1])
	assert.Equal(t, "2025-11-15", data.params[2])
	assert.Equal(t, "Sell", data.params[3])
}

func TestQueryRecordsClientWithoutIdentity(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newTestService(exec, "")

	_, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
		Context:  "CLIENT",
	})
	require.Error(t, err)

	var appErr *xhttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
	assert.Empty(t, exec.calls, "identity failure must precede any network call")
}

func TestQueryRecordsCountSharesPredicates(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(),
		rows(models.Record{"total": 0.0}),
	}}
	svc := newTestService(exec, "")

	_, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
		Context:  "MARKET",
		Filters:  policy.FilterSpec{"currency": "EUR", "side": "Buy"},
		Limit:    25,
		Offset:   50,
	})
	require.NoError(t, err)
	require.Len(t, exec.calls, 2)

	data, count := exec.calls[0], exec.calls[1]
	assert.Contains(t, count.query, "COUNT(*) as total")
	assert.NotContains(t, count.query, "LIMIT")

	// The count binds exactly the data parameters minus page geometry.
	require.Len(t, data.params, len(count.params)+2)
	assert.Equal(t, count.params, data.params[:len(count.params)])

	dataWhere := data.query[strings.Index(data.query, "WHERE"):strings.Index(data.query, "ORDER BY")]
	countWhere := count.query[strings.Index(count.query, "WHERE"):]
	assert.Equal(t, strings.TrimSpace(dataWhere), strings.TrimSpace(countWhere))
}

func TestQueryRecordsGrouped(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(
			models.Record{"trade_date": "2025-09-01", "dealer": "A", "side": "Buy", "size_capped": 1.0},
			models.Record{"trade_date": "2025-09-02", "dealer": "B", "side": "Sell", "size_capped": 2.0},
			models.Record{"trade_date": "2025-09-03", "dealer": "A", "side": "Buy", "size_capped": 3.0},
		),
		rows(models.Record{"total": 3.0}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
		Context:  "MARKET",
		GroupBy:  "dealer",
		Limit:    100,
	})
	require.NoError(t, err)
	require.Nil(t, res.List)
	require.NotNil(t, res.Grouped)

	g := res.Grouped
	assert.Equal(t, "dealer", g.GroupedBy)
	assert.Equal(t, 2, g.TotalGroups)
	assert.Equal(t, 2, g.GroupedData["A"].Summary.Count)
	require.NotNil(t, g.Pagination)
	assert.Equal(t, 3, g.Pagination.Total)
}

func TestQueryRecordsGroupedByPeriod(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(
			models.Record{"trade_date": "2025-07-10"},
			models.Record{"trade_date": "2025-08-02"},
		),
		rows(models.Record{"total": 2.0}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-07-01",
		DateTo:   "2025-08-31",
		Context:  "MARKET",
		GroupBy:  "month",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Grouped)
	assert.Contains(t, res.Grouped.GroupedData, "2025-07")
	assert.Contains(t, res.Grouped.GroupedData, "2025-08")
}

func TestQueryRecordsInvalidGroupBy(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newTestService(exec, "")

	_, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
		GroupBy:  "fortnight",
	})
	require.Error(t, err)

	var appErr *xhttp.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, exec.calls, "group_by validation must precede any network call")
}

func TestQueryRecordsRejectsNegativePagination(t *testing.T) {
	svc := newTestService(&fakeExecutor{}, "")

	for _, p := range []QueryParams{
		{DateFrom: "2025-09-01", DateTo: "2025-09-30", Limit: -1},
		{DateFrom: "2025-09-01", DateTo: "2025-09-30", Offset: -5},
	} {
		_, err := svc.QueryRecords(context.Background(), p)
		require.Error(t, err, fmt.Sprintf("%+v", p))
	}
}

func TestQueryRecordsDefaultsToMarket(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(),
		rows(models.Record{"total": 0.0}),
	}}
	svc := newTestService(exec, "")

	res, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
	})
	require.NoError(t, err)
	assert.Equal(t, "MARKET", res.List.Context)
}

type fakeAudit struct {
	events []*models.AuditEvent
}

func (f *fakeAudit) Publish(_ context.Context, event *models.AuditEvent) error {
	f.events = append(f.events, event)
	return nil
}

func TestAggregateTotalsCaching(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		contributorRow(7),
		rows(models.Record{"total_volume_eur": 100.0, "buy_volume_eur": 100.0}),
	}}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	svc := newTestService(exec, "", WithCache(mem, time.Minute))

	first, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.NoError(t, err)
	require.Len(t, exec.calls, 2)

	second, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
	require.NoError(t, err)
	assert.Len(t, exec.calls, 2, "cache hit must not reach the executor")
	assert.Equal(t, first.Totals, second.Totals)
}

func TestAggregateTotalsGatedNeverCached(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		contributorRow(2),
		contributorRow(2),
	}}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	svc := newTestService(exec, "", WithCache(mem, time.Minute))

	for i := 0; i < 2; i++ {
		res, err := svc.AggregateTotals(context.Background(), "2025-08-01", "2025-10-31")
		require.NoError(t, err)
		require.NotNil(t, res.Insufficient)
	}
	assert.Len(t, exec.calls, 2, "a gated response must be recomputed every time")
}

func TestQueryRecordsAuditNeverCarriesIdentityInClear(t *testing.T) {
	exec := &fakeExecutor{results: []*models.ResultSet{
		rows(),
		rows(models.Record{"total": 0.0}),
	}}
	sink := &fakeAudit{}
	svc := newTestService(exec, "Client 1", WithAudit(sink))

	_, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
		Context:  "CLIENT",
		Filters:  policy.FilterSpec{"currency": "EUR", "side": "Buy"},
	})
	require.NoError(t, err)
	require.Len(t, sink.events, 1)

	event := sink.events[0]
	assert.Equal(t, "query_records", event.Operation)
	assert.Equal(t, "CLIENT", event.Context)
	assert.Equal(t, []string{"currency", "side"}, event.FilterKeys)
	assert.NotEmpty(t, event.ClientHash)
	assert.NotEqual(t, "Client 1", event.ClientHash)
	assert.NotContains(t, event.ClientHash, "Client")
	assert.False(t, event.Timestamp.IsZero())
}

func TestQueryRecordsInvalidContext(t *testing.T) {
	svc := newTestService(&fakeExecutor{}, "")

	_, err := svc.QueryRecords(context.Background(), QueryParams{
		DateFrom: "2025-09-01",
		DateTo:   "2025-09-30",
		Context:  "BOTH",
	})
	require.Error(t, err)
}
