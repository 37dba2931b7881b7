package models

import (
	"encoding/json"
	"strconv"
)

// Record is one row returned by the query executor, keyed by the projected
// column alias. Values arrive as generic JSON or driver types.
type Record map[string]interface{}

// ResultSet is the executor response: an ordered sequence of row mappings.
type ResultSet struct {
	Data []Record `json:"data"`
}

// String returns the value under key as a string, or "" when absent or
// not representable as text.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Float returns the value under key as a float64 when it is numeric or a
// numeric string; ok reports whether a usable number was found.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns the value under key as an int; ok reports whether a usable
// number was found. Fractional values are truncated.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}
