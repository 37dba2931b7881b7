package models

// AggregateTotals carries the safe aggregated outputs for a lagged window.
// Individual trade rows never appear here.
type AggregateTotals struct {
	TotalVolumeEUR float64 `json:"total_volume_eur"`
	BuyVolumeEUR   float64 `json:"buy_volume_eur"`
	SellVolumeEUR  float64 `json:"sell_volume_eur"`
	BuyPct         float64 `json:"buy_pct"`
	SellPct        float64 `json:"sell_pct"`
	TotalTrades    int     `json:"total_trades"`
	BuyTrades      int     `json:"buy_trades"`
	SellTrades     int     `json:"sell_trades"`

	PeriodStart         string `json:"period_start"`
	PeriodEnd           string `json:"period_end"`
	OriginalPeriodStart string `json:"original_period_start"`
	OriginalPeriodEnd   string `json:"original_period_end"`
	LagAppliedDays      int    `json:"lag_applied_days"`
	ContributorCount    int    `json:"contributor_count"`
}

// InsufficientData is the gating variant returned when the distinct
// contributor count for a window is below the disclosure minimum.
type InsufficientData struct {
	Error            string `json:"error"`
	ContributorCount int    `json:"contributor_count"`
	MinimumRequired  int    `json:"minimum_required"`
}

// TotalsResult is the aggregate-totals envelope; exactly one field is set.
type TotalsResult struct {
	Totals       *AggregateTotals  `json:"totals,omitempty"`
	Insufficient *InsufficientData `json:"insufficient,omitempty"`
}
