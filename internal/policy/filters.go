package policy

import "strings"

// FilterSpec maps recognized filter keys to scalar values. Unrecognized
// keys are ignored; filters narrow, never widen, the row-level
// restriction already selected by the access policy.
type FilterSpec map[string]string

// Predicate is one parameterized condition with its bound value.
type Predicate struct {
	Expr  string
	Value interface{}
}

// filterColumns fixes both the recognized key set and the canonical
// predicate order, so generated query text is deterministic for any given
// spec.
var filterColumns = []struct {
	key    string
	column string
}{
	{"isin", "isin"},
	{"ticker", "ticker"},
	{"side", "side"},
	{"dealer", "counter_party"},
	{"sector", "secmst_glimpse_sector"},
	{"region", "secmst_region"},
	{"currency", "currency"},
	{"seniority", "secmst_seniority"},
	{"credit_grade", "secmst_credit_grade"},
	{"bond_category", "secmst_bond_category"},
}

// BuildPredicates translates a filter spec into an ordered predicate list,
// one per recognized key present with a non-empty value.
func BuildPredicates(spec FilterSpec) []Predicate {
	preds := make([]Predicate, 0, len(spec))
	for _, fc := range filterColumns {
		if v, ok := spec[fc.key]; ok && v != "" {
			preds = append(preds, Predicate{Expr: fc.column + " = ?", Value: v})
		}
	}
	return preds
}

// WhereClause joins predicates into a conjunction, or an always-true
// predicate for an empty list.
func WhereClause(preds []Predicate) string {
	if len(preds) == 0 {
		return "1=1"
	}
	exprs := make([]string, len(preds))
	for i, p := range preds {
		exprs[i] = p.Expr
	}
	return strings.Join(exprs, " AND ")
}

// PredicateParams extracts bound values in predicate order.
func PredicateParams(preds []Predicate) []interface{} {
	params := make([]interface{}, len(preds))
	for i, p := range preds {
		params[i] = p.Value
	}
	return params
}
