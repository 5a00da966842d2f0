package docstore

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// Lookup resolves a dotted field path in doc.
func Lookup(doc Document, path string) (any, bool) {
	var cur any = map[string]any(doc)
	for _, part := range strings.Split(path, ".") {
		var m map[string]any
		switch t := cur.(type) {
		case map[string]any:
			m = t
		case Document:
			m = t
		default:
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Matches reports whether doc satisfies every filter.
func Matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := Lookup(doc, f.Field)
		if !ok {
			return false
		}
		c, comparable := compare(v, f.Value)
		if !comparable {
			if f.Op == OpNe {
				continue
			}
			return false
		}
		if !f.Op.holds(c) {
			return false
		}
	}
	return true
}

func (o Op) holds(c int) bool {
	switch o {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	}
	return false
}

// compare orders two field values. Numbers compare numerically across Go
// kinds, strings that both parse as RFC 3339 compare as instants.
func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return cmp.Compare(x, y), true
		}
		return 0, false
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			if t, isTime := b.(time.Time); isTime {
				y = t.Format(time.RFC3339Nano)
			} else {
				return 0, false
			}
		}
		if tx, err := time.Parse(time.RFC3339Nano, x); err == nil {
			if ty, err := time.Parse(time.RFC3339Nano, y); err == nil {
				return tx.Compare(ty), true
			}
		}
		return strings.Compare(x, y), true
	case time.Time:
		switch y := b.(type) {
		case time.Time:
			return x.Compare(y), true
		case string:
			ty, err := time.Parse(time.RFC3339Nano, y)
			if err != nil {
				return 0, false
			}
			return x.Compare(ty), true
		}
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

// number widens numeric kinds. Numeric strings are not numbers here so that
// string fields keep lexical order.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// FormatID renders ids assigned to documents that arrive with a non-string id.
func FormatID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		if f, ok := number(t); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}
