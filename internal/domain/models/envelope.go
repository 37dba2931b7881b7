package models

// Pagination echoes the page geometry alongside the total row count that
// the same predicate set matches without limit/offset.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// TransactionList is the flat (ungrouped) transaction-history envelope.
type TransactionList struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`

	PeriodStart         string `json:"period_start"`
	PeriodEnd           string `json:"period_end"`
	OriginalPeriodStart string `json:"original_period_start,omitempty"`
	OriginalPeriodEnd   string `json:"original_period_end,omitempty"`
	Context             string `json:"context"`
	ClientID            string `json:"client_id,omitempty"`
	LagAppliedDays      int    `json:"lag_applied_days,omitempty"`
	Note                string `json:"note,omitempty"`
}

// GroupSummary accumulates per-group statistics in a single pass.
type GroupSummary struct {
	Count       int      `json:"count"`
	TotalVolume float64  `json:"total_volume"`
	BuyCount    int      `json:"buy_count"`
	SellCount   int      `json:"sell_count"`
	Currencies  []string `json:"currencies"`
}

// Group is one bucket of grouped transactions with its summary.
type Group struct {
	Transactions []Record      `json:"transactions"`
	Summary      *GroupSummary `json:"summary"`
}

// GroupedResult is the grouped transaction-history envelope.
type GroupedResult struct {
	GroupedData map[string]*Group `json:"grouped_data"`
	TotalGroups int               `json:"total_groups"`
	GroupedBy   string            `json:"grouped_by"`

	Context     string      `json:"context"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	Pagination  *Pagination `json:"pagination,omitempty"`
}

// RecordsResult is the query-records envelope; exactly one field is set.
type RecordsResult struct {
	List    *TransactionList `json:"list,omitempty"`
	Grouped *GroupedResult   `json:"grouped,omitempty"`
}
