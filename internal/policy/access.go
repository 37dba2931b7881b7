package policy

import (
	"errors"

	"TradeGate/internal/domain/repository"
)

// ErrIdentityRequired is returned when a CLIENT-context request reaches
// the access policy without a resolvable caller identity. It is a fatal
// precondition failure; falling back to MARKET semantics is not permitted.
var ErrIdentityRequired = errors.New("CLIENT context requires a resolvable client identity; the caller must be authenticated before this path is reached")

// LagMode selects which date-lag transform the operation applies.
type LagMode int

const (
	// LagNone uses the requested window verbatim (CLIENT history).
	LagNone LagMode = iota
	// LagCap truncates the window end at the disclosure cutoff (MARKET history).
	LagCap
	// LagShift moves the whole window backward (aggregate totals).
	LagShift
)

// marketColumns exposes dealer identity and capped size fields only.
// Client identifiers are never projected in the anonymized view.
const marketColumns = `output_file_dtl_id as txn_id,
trade_date,
trade_time,
side,
isin,
ticker,
maturity,
coupon_perc,
size_in_MM_capped_num as size_capped,
size_in_MM as size_display,
price,
settlement_date,
on_venue,
venue,
process_trade,
auto_execution,
portfolio_trade,
currency,
counter_party as dealer,
counterparty_abbreviations as dealer_abbrev,
secmst_glimpse_sector as sector,
secmst_country as country,
secmst_region as region,
secmst_seniority as seniority,
secmst_credit_grade as credit_grade,
secmst_bond_category as bond_category,
secmst_entity_name as entity_name,
maturity_index,
size_in_eur as size_eur_capped`

// clientColumns exposes actual uncapped sizes, prices, yield and spread.
// Visible only through the owner-bound row restriction.
const clientColumns = `output_file_dtl_id as txn_id,
trade_date,
trade_time,
side,
isin,
ticker,
maturity,
coupon_perc,
size_in_MM_actual as size_actual,
size_in_eur as size_eur_actual,
price_actual as price,
mid_price_actual as mid_price,
yield_perc,
spread,
settlement_date,
on_venue,
venue_actual as venue,
process_trade,
auto_execution,
portfolio_trade,
counter_party as dealer,
counterparty_abbreviations as dealer_abbrev,
currency,
secmst_glimpse_sector as sector,
secmst_country as country,
secmst_region as region,
secmst_seniority as seniority,
secmst_credit_grade as credit_grade,
secmst_bond_category as bond_category,
secmst_entity_name as entity_name,
maturity_index`

// AccessDecision is the immutable policy-decision value for one request:
// column projection, row restriction with its bound values, and the
// date-lag transform to apply.
type AccessDecision struct {
	Context        Context
	Columns        string
	RowRestriction string
	RowParams      []interface{}
	LagMode        LagMode
	ClientID       string
}

// HistoryDecision selects the projection, row restriction and lag mode
// for a transaction-history request. For CLIENT context the identity is
// resolved here, exactly once, from the identity collaborator; it is the
// first-evaluated predicate term and never satisfiable by caller input.
func HistoryDecision(qctx Context, identity repository.IdentityProvider) (AccessDecision, error) {
	if qctx == ContextClient {
		if identity == nil {
			return AccessDecision{}, ErrIdentityRequired
		}
		clientID, ok := identity.CurrentClientIdentity()
		if !ok || clientID == "" {
			return AccessDecision{}, ErrIdentityRequired
		}
		return AccessDecision{
			Context:        ContextClient,
			Columns:        clientColumns,
			RowRestriction: "buy_side = ?",
			RowParams:      []interface{}{clientID},
			LagMode:        LagNone,
			ClientID:       clientID,
		}, nil
	}

	return AccessDecision{
		Context: ContextMarket,
		Columns: marketColumns,
		LagMode: LagCap,
	}, nil
}
