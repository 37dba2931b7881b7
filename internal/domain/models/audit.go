package models

import "time"

// AuditEvent records one facade operation crossing the trust boundary.
// It carries request geometry and outcome only: no row data, no filter
// values, and the client identity only as a stable hash.
type AuditEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	Operation     string    `json:"operation"`
	Context       string    `json:"context"`
	RequestedFrom string    `json:"requested_from"`
	RequestedTo   string    `json:"requested_to"`
	EffectiveFrom string    `json:"effective_from"`
	EffectiveTo   string    `json:"effective_to"`
	FilterKeys    []string  `json:"filter_keys,omitempty"`
	Limit         int       `json:"limit,omitempty"`
	Offset        int       `json:"offset,omitempty"`
	GroupBy       string    `json:"group_by,omitempty"`
	Outcome       string    `json:"outcome"`
	ClientHash    string    `json:"client_hash,omitempty"`
}
