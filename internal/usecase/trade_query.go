package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	"TradeGate/internal/grouping"
	"TradeGate/internal/policy"
	"TradeGate/pkg/cache"
	xhttp "TradeGate/pkg/http"
	xlogger "TradeGate/pkg/logger"
)

const (
	opTotals  = "aggregate_totals"
	opRecords = "query_records"

	outcomeOK           = "ok"
	outcomeInsufficient = "insufficient"
	outcomeError        = "error"

	insufficientDataMsg = "Insufficient data for this filter"

	marketHistoryNote = "30-day lag applied. Dealer names visible. Client identifiers excluded. Sizes are capped."
	clientHistoryNote = "No lag. Full detail for your own trades. Actual UNCAPPED sizes, dealer names, and actual prices visible."
)

// QueryParams carries one query_records request into the facade.
type QueryParams struct {
	DateFrom string
	DateTo   string
	Context  string
	Filters  policy.FilterSpec
	Limit    int
	Offset   int
	GroupBy  string
}

// SecureQueryService orchestrates the data-control policies into the two
// public operations. It holds no mutable per-request state and is safe
// for concurrent use when the executor collaborator is.
type SecureQueryService struct {
	exec     repository.QueryExecutor
	identity repository.IdentityProvider
	lag      policy.LagPolicy
	guard    policy.ThresholdGuard
	table    string

	cache    cache.Service
	cacheTTL time.Duration
	audit    repository.AuditSink
	metrics  repository.Metrics
	logger   *xlogger.Logger
}

// Option configures SecureQueryService.
type Option func(*SecureQueryService)

// WithLagPolicy overrides the date-lag policy.
func WithLagPolicy(lag policy.LagPolicy) Option {
	return func(s *SecureQueryService) {
		s.lag = lag
	}
}

// WithThresholdGuard overrides the contributor threshold guard.
func WithThresholdGuard(guard policy.ThresholdGuard) Option {
	return func(s *SecureQueryService) {
		s.guard = guard
	}
}

// WithTable sets the trade-records relation name.
func WithTable(table string) Option {
	return func(s *SecureQueryService) {
		if table != "" {
			s.table = table
		}
	}
}

// WithCache caches MARKET aggregate totals. CLIENT responses are never
// cached: a shared cache would bypass row-level isolation.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(s *SecureQueryService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithAudit publishes access-audit events.
func WithAudit(sink repository.AuditSink) Option {
	return func(s *SecureQueryService) {
		s.audit = sink
	}
}

// WithMetrics records operational metrics.
func WithMetrics(m repository.Metrics) Option {
	return func(s *SecureQueryService) {
		s.metrics = m
	}
}

// WithLogger sets the service logger.
func WithLogger(l *xlogger.Logger) Option {
	return func(s *SecureQueryService) {
		s.logger = l
	}
}

// NewSecureQueryService creates the facade over an executor and an
// identity provider.
func NewSecureQueryService(exec repository.QueryExecutor, identity repository.IdentityProvider, opts ...Option) *SecureQueryService {
	s := &SecureQueryService{
		exec:     exec,
		identity: identity,
		lag:      policy.NewLagPolicy(policy.DefaultLagDays),
		guard:    policy.NewThresholdGuard(policy.DefaultMinContributors),
		table:    "trade_records",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AggregateTotals computes market totals over the shift-lagged window.
// The contributor threshold gates disclosure: on failure the gating
// variant is the entire response, with no partial totals attached.
func (s *SecureQueryService) AggregateTotals(ctx context.Context, dateFrom, dateTo string) (*models.TotalsResult, error) {
	requested, err := policy.ParseDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, xhttp.BadRequestError(err.Error())
	}

	cacheKey := fmt.Sprintf("totals:%s|%s", dateFrom, dateTo)
	if s.cache != nil {
		var cached models.AggregateTotals
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordOperation(opTotals, policy.ContextMarket.String(), outcomeOK)
			return &models.TotalsResult{Totals: &cached}, nil
		}
	}

	shifted := s.lag.Shift(requested)
	lagFrom, lagTo := shifted.Abbrev()

	contributorQuery := fmt.Sprintf(`SELECT COUNT(DISTINCT buy_side) as contributor_count
FROM %s
WHERE trade_date >= ? AND trade_date <= ?`, s.table)

	contribRes, err := s.execute(ctx, opTotals, contributorQuery, []interface{}{lagFrom, lagTo})
	if err != nil {
		s.recordOperation(opTotals, policy.ContextMarket.String(), outcomeError)
		return nil, err
	}

	contributorCount := 0
	if len(contribRes.Data) > 0 {
		contributorCount, _ = contribRes.Data[0].Int("contributor_count")
	}

	if gate := s.guard.Check(contributorCount); gate != nil {
		if s.metrics != nil {
			s.metrics.RecordGateRejection()
		}
		s.recordOperation(opTotals, policy.ContextMarket.String(), outcomeInsufficient)
		s.publishAudit(ctx, &models.AuditEvent{
			Operation:     opTotals,
			Context:       policy.ContextMarket.String(),
			RequestedFrom: dateFrom,
			RequestedTo:   dateTo,
			EffectiveFrom: lagFrom,
			EffectiveTo:   lagTo,
			Outcome:       outcomeInsufficient,
		})
		return &models.TotalsResult{Insufficient: &models.InsufficientData{
			Error:            insufficientDataMsg,
			ContributorCount: gate.ContributorCount,
			MinimumRequired:  gate.MinimumRequired,
		}}, nil
	}

	// The totals query reads actual uncapped values; only the aggregated
	// figures below ever leave this function.
	totalsQuery := fmt.Sprintf(`SELECT
SUM(CASE WHEN side = 'Buy' THEN size_in_eur ELSE 0 END) as buy_volume_eur,
SUM(CASE WHEN side = 'Sell' THEN size_in_eur ELSE 0 END) as sell_volume_eur,
SUM(size_in_eur) as total_volume_eur,
COUNT(CASE WHEN side = 'Buy' THEN 1 END) as buy_trades,
COUNT(CASE WHEN side = 'Sell' THEN 1 END) as sell_trades,
COUNT(*) as total_trades
FROM %s
WHERE trade_date >= ? AND trade_date <= ?`, s.table)

	totalsRes, err := s.execute(ctx, opTotals, totalsQuery, []interface{}{lagFrom, lagTo})
	if err != nil {
		s.recordOperation(opTotals, policy.ContextMarket.String(), outcomeError)
		return nil, err
	}

	var row models.Record
	if len(totalsRes.Data) > 0 {
		row = totalsRes.Data[0]
	}

	totalVolume, _ := row.Float("total_volume_eur")
	buyVolume, _ := row.Float("buy_volume_eur")
	sellVolume, _ := row.Float("sell_volume_eur")
	totalTrades, _ := row.Int("total_trades")
	buyTrades, _ := row.Int("buy_trades")
	sellTrades, _ := row.Int("sell_trades")

	buyPct, sellPct := 0.0, 0.0
	if totalVolume > 0 {
		buyPct = round2(buyVolume / totalVolume * 100)
		sellPct = round2(sellVolume / totalVolume * 100)
	}

	totals := &models.AggregateTotals{
		TotalVolumeEUR:      totalVolume,
		BuyVolumeEUR:        buyVolume,
		SellVolumeEUR:       sellVolume,
		BuyPct:              buyPct,
		SellPct:             sellPct,
		TotalTrades:         totalTrades,
		BuyTrades:           buyTrades,
		SellTrades:          sellTrades,
		PeriodStart:         lagFrom,
		PeriodEnd:           lagTo,
		OriginalPeriodStart: dateFrom,
		OriginalPeriodEnd:   dateTo,
		LagAppliedDays:      s.lag.LagDays,
		ContributorCount:    contributorCount,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, totals, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("totals cache write failed", xlogger.Error(err))
		}
	}

	s.recordOperation(opTotals, policy.ContextMarket.String(), outcomeOK)
	s.publishAudit(ctx, &models.AuditEvent{
		Operation:     opTotals,
		Context:       policy.ContextMarket.String(),
		RequestedFrom: dateFrom,
		RequestedTo:   dateTo,
		EffectiveFrom: lagFrom,
		EffectiveTo:   lagTo,
		Outcome:       outcomeOK,
	})

	return &models.TotalsResult{Totals: totals}, nil
}

// QueryRecords retrieves transaction history under the access policy for
// the requested context, optionally grouped. The count query shares the
// data query's predicate slice by construction, keeping pagination totals
// consistent with delivered rows.
func (s *SecureQueryService) QueryRecords(ctx context.Context, p QueryParams) (*models.RecordsResult, error) {
	if p.Context == "" {
		p.Context = policy.ContextMarket.String()
	}
	qctx, err := policy.ParseContext(p.Context)
	if err != nil {
		return nil, xhttp.BadRequestError(err.Error())
	}
	if p.Limit < 0 {
		return nil, xhttp.ValidationFieldError("limit", "limit must be non-negative")
	}
	if p.Offset < 0 {
		return nil, xhttp.ValidationFieldError("offset", "offset must be non-negative")
	}
	if p.GroupBy != "" && !grouping.IsTimeBucket(p.GroupBy) && !grouping.IsGroupableField(p.GroupBy) {
		return nil, xhttp.ValidationFieldError("group_by", fmt.Sprintf("unrecognized group_by value %q", p.GroupBy))
	}

	requested, err := policy.ParseDateRange(p.DateFrom, p.DateTo)
	if err != nil {
		return nil, xhttp.BadRequestError(err.Error())
	}

	// Identity resolution is a hard sequencing dependency: it happens
	// here, before any predicate is built or network call issued.
	decision, err := policy.HistoryDecision(qctx, s.identity)
	if err != nil {
		if errors.Is(err, policy.ErrIdentityRequired) {
			s.recordOperation(opRecords, qctx.String(), outcomeError)
			return nil, xhttp.IdentityRequiredError(err.Error())
		}
		return nil, err
	}

	effective := requested
	if decision.LagMode == policy.LagCap {
		effective = s.lag.Cap(requested)
	}
	periodStart, periodEnd := effective.Strings()
	queryFrom, queryTo := effective.HalfOpen()

	preds := policy.BuildPredicates(p.Filters)
	filterWhere := policy.WhereClause(preds)
	filterParams := policy.PredicateParams(preds)

	where := fmt.Sprintf("trade_date >= ?\n  AND trade_date < ?\n  AND %s", filterWhere)
	params := []interface{}{queryFrom, queryTo}
	if decision.RowRestriction != "" {
		// Row-level security: the owner predicate leads and its value
		// comes from the identity collaborator only.
		where = decision.RowRestriction + "\n  AND " + where
		params = append(append([]interface{}{}, decision.RowParams...), params...)
	}
	params = append(params, filterParams...)

	dataQuery := fmt.Sprintf(`SELECT
%s
FROM %s
WHERE %s
ORDER BY trade_date DESC, trade_time DESC
LIMIT ? OFFSET ?`, decision.Columns, s.table, where)

	dataParams := append(append([]interface{}{}, params...), p.Limit, p.Offset)

	dataRes, err := s.execute(ctx, opRecords, dataQuery, dataParams)
	if err != nil {
		s.recordOperation(opRecords, qctx.String(), outcomeError)
		return nil, err
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) as total
FROM %s
WHERE %s`, s.table, where)

	countRes, err := s.execute(ctx, opRecords, countQuery, params)
	if err != nil {
		s.recordOperation(opRecords, qctx.String(), outcomeError)
		return nil, err
	}

	total := 0
	if len(countRes.Data) > 0 {
		total, _ = countRes.Data[0].Int("total")
	}

	list := &models.TransactionList{
		Data: dataRes.Data,
		Pagination: models.Pagination{
			Limit:  p.Limit,
			Offset: p.Offset,
			Total:  total,
		},
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Context:     qctx.String(),
	}

	if qctx == policy.ContextMarket {
		list.OriginalPeriodStart = p.DateFrom
		list.OriginalPeriodEnd = p.DateTo
		list.LagAppliedDays = s.lag.LagDays
		list.Note = marketHistoryNote
	} else {
		list.ClientID = decision.ClientID
		list.Note = clientHistoryNote
	}

	s.recordOperation(opRecords, qctx.String(), outcomeOK)
	s.publishAudit(ctx, &models.AuditEvent{
		Operation:     opRecords,
		Context:       qctx.String(),
		RequestedFrom: p.DateFrom,
		RequestedTo:   p.DateTo,
		EffectiveFrom: periodStart,
		EffectiveTo:   periodEnd,
		FilterKeys:    filterKeys(p.Filters),
		Limit:         p.Limit,
		Offset:        p.Offset,
		GroupBy:       p.GroupBy,
		Outcome:       outcomeOK,
		ClientHash:    hashIdentity(decision.ClientID),
	})

	if p.GroupBy == "" {
		return &models.RecordsResult{List: list}, nil
	}

	var groups map[string]*models.Group
	if grouping.IsTimeBucket(p.GroupBy) {
		groups, err = grouping.ByPeriod(list.Data, p.GroupBy)
		if err != nil {
			return nil, xhttp.BadRequestError(err.Error())
		}
	} else {
		groups = grouping.ByField(list.Data, p.GroupBy)
	}

	pagination := list.Pagination
	return &models.RecordsResult{Grouped: &models.GroupedResult{
		GroupedData: groups,
		TotalGroups: len(groups),
		GroupedBy:   p.GroupBy,
		Context:     qctx.String(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Pagination:  &pagination,
	}}, nil
}

// execute issues one executor round-trip with metrics and error wrapping.
// The upstream detail is preserved for diagnosability; bound parameter
// values are not echoed into the error.
func (s *SecureQueryService) execute(ctx context.Context, operation, query string, params []interface{}) (*models.ResultSet, error) {
	start := time.Now()
	res, err := s.exec.Execute(ctx, query, params)
	if s.metrics != nil {
		s.metrics.ObserveExecutorDuration(operation, time.Since(start))
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordExecutorError(operation)
		}
		if s.logger != nil {
			s.logger.Error("query executor call failed",
				xlogger.String("operation", operation),
				xlogger.Error(err),
			)
		}
		return nil, xhttp.ExecutorError("query executor call failed", err)
	}
	return res, nil
}

func (s *SecureQueryService) recordOperation(operation, qctx, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, qctx, outcome)
	}
}

func (s *SecureQueryService) publishAudit(ctx context.Context, event *models.AuditEvent) {
	if s.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	if err := s.audit.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit publish failed", xlogger.Error(err))
	}
}

func filterKeys(spec policy.FilterSpec) []string {
	if len(spec) == 0 {
		return nil
	}
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// hashIdentity derives a stable non-reversible tag for audit events so
// the audit topic never carries the identity in the clear.
func hashIdentity(clientID string) string {
	if clientID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(clientID))
	return hex.EncodeToString(sum[:])[:16]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
