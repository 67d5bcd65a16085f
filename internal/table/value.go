package table

import (
	"math"
	"strconv"
	"strings"
)

// ParseCell converts raw CSV text into a cell of type typ. Empty text is nil.
// ok is false when s is non-empty but does not parse; the returned cell is nil
// in that case so the value can be imputed later.
func ParseCell(s string, typ ColumnType) (v any, ok bool) {
	if s == "" {
		return nil, true
	}
	switch typ {
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) {
			return nil, false
		}
		return f, true
	case TypeInt:
		st := strings.TrimSpace(s)
		if i, err := strconv.ParseInt(st, 10, 64); err == nil {
			return i, true
		}
		// Integral floats such as "3.0" come back from tools that widen ints.
		if f, err := strconv.ParseFloat(st, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), true
		}
		return nil, false
	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, false
		}
		return b, true
	default:
		return s, true
	}
}

// FormatCell renders a cell for CSV output. nil and NaN become the empty
// string; whole floats keep a trailing ".0" so the column stays recognisably
// fractional; bools are "True"/"False".
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		if math.IsInf(x, 1) {
			return "inf"
		}
		if math.IsInf(x, -1) {
			return "-inf"
		}
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".") {
			s += ".0"
		}
		return s
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return ""
	}
}

// Float returns v as a float64 when it is numeric.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
