package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Coercion helpers for decoding remote documents. Remote payloads are
// loosely typed maps; every field is coerced to its expected semantic type
// with a safe fallback so a malformed document never breaks a snapshot.

// CoerceString converts v to a string, falling back to "".
func CoerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// CoerceInt converts v to an int, falling back to 0.
func CoerceInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}

// CoerceInt64 converts v to an int64, falling back to 0.
func CoerceInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i
		}
	}
	return 0
}

// CoerceDecimal converts v to a decimal, falling back to zero.
func CoerceDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(n)
	case int64:
		return decimal.NewFromInt(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// CoerceStrings converts v to a defensively copied string slice, falling
// back to an empty slice. Elements are themselves coerced.
func CoerceStrings(v any) []string {
	switch arr := v.(type) {
	case []string:
		out := make([]string, len(arr))
		copy(out, arr)
		return out
	case []any:
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			out = append(out, CoerceString(el))
		}
		return out
	}
	return []string{}
}

// CoerceTime converts v to a time, falling back to the zero time. Accepts
// RFC 3339 strings and unix-epoch numbers (seconds).
func CoerceTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	case float64:
		return time.Unix(int64(t), 0).UTC()
	case int64:
		return time.Unix(t, 0).UTC()
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return time.Unix(i, 0).UTC()
		}
	}
	return time.Time{}
}
