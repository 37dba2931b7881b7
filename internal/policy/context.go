// Package policy implements the data-control decisions taken before any
// query reaches the executor: query context, date-lag transforms, filter
// predicate construction, row-level access and the contributor threshold.
// A mistake in this package is a data leak, not a cosmetic bug; every rule
// here exists to keep record-level detail behind the trust boundary.
package policy

import (
	"fmt"
	"strings"
)

// Context selects which access-policy and date-lag variant applies to a
// request. It is fixed for the duration of one request.
type Context int

const (
	// ContextMarket is the anonymized view: lagged dates, capped sizes,
	// dealer names visible, no client identifiers.
	ContextMarket Context = iota
	// ContextClient is the authenticated view: no lag, uncapped sizes and
	// actual prices, restricted to rows owned by the caller.
	ContextClient
)

// ParseContext canonicalizes a context string. Matching is
// case-insensitive; anything other than MARKET or CLIENT is rejected.
func ParseContext(s string) (Context, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MARKET":
		return ContextMarket, nil
	case "CLIENT":
		return ContextClient, nil
	default:
		return 0, fmt.Errorf("invalid context: %q, must be 'MARKET' or 'CLIENT'", s)
	}
}

func (c Context) String() string {
	if c == ContextClient {
		return "CLIENT"
	}
	return "MARKET"
}
