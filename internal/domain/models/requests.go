package models

// Requests for the query HTTP endpoints. Defined in domain for consistency
// and reuse between the HTTP surface and the CLI.

// TotalsRequest asks for aggregate market totals over a requested window.
// The effective window is shifted backward by the configured lag before any
// data is touched.
type TotalsRequest struct {
	DateFrom string `query:"date_from" json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string `query:"date_to" json:"date_to" validate:"required,datetime=2006-01-02"`
}

// RecordsRequest asks for transaction history. limit is deliberately left
// uncapped; bounding it is a deployment policy decision.
type RecordsRequest struct {
	DateFrom string `query:"date_from" json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string `query:"date_to" json:"date_to" validate:"required,datetime=2006-01-02"`
	Context  string `query:"context" json:"context" default:"MARKET"`
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=0"`
	Offset   int    `query:"offset" json:"offset" validate:"gte=0"`
	GroupBy  string `query:"group_by" json:"group_by"`

	ISIN         string `query:"isin" json:"isin"`
	Ticker       string `query:"ticker" json:"ticker"`
	Side         string `query:"side" json:"side"`
	Dealer       string `query:"dealer" json:"dealer"`
	Sector       string `query:"sector" json:"sector"`
	Region       string `query:"region" json:"region"`
	Currency     string `query:"currency" json:"currency"`
	Seniority    string `query:"seniority" json:"seniority"`
	CreditGrade  string `query:"credit_grade" json:"credit_grade"`
	BondCategory string `query:"bond_category" json:"bond_category"`
}

// Filters collects the non-empty filter fields into a spec keyed by the
// recognized filter names.
func (r *RecordsRequest) Filters() map[string]string {
	spec := map[string]string{
		"isin":          r.ISIN,
		"ticker":        r.Ticker,
		"side":          r.Side,
		"dealer":        r.Dealer,
		"sector":        r.Sector,
		"region":        r.Region,
		"currency":      r.Currency,
		"seniority":     r.Seniority,
		"credit_grade":  r.CreditGrade,
		"bond_category": r.BondCategory,
	}
	for k, v := range spec {
		if v == "" {
			delete(spec, k)
		}
	}
	return spec
}
