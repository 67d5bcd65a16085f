package table

import (
	"strconv"
	"strings"
	"time"
)

// InferType guesses a column type from raw text samples. All non-empty values
// must satisfy the narrower type: int, then bool, then float, then date;
// anything else (and an all-empty column) is text.
func InferType(values []string) ColumnType {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return TypeText
	}
	switch {
	case allMatch(nonEmpty, isInt):
		return TypeInt
	case allMatch(nonEmpty, isBool):
		return TypeBool
	case allMatch(nonEmpty, isFloat):
		return TypeFloat
	case allMatch(nonEmpty, isDate):
		return TypeDate
	}
	return TypeText
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isBool accepts the literal spellings strconv.ParseBool understands besides
// 1/0, which are claimed by isInt first.
func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "t", "f":
		return true
	}
	return false
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// dateLayouts are tried in order; month-first wins over day-first for
// ambiguous slash dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
	"20060102",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04:05",
	"02/01/2006 15:04:05",
}

// ParseDate parses s as a calendar date using the known timestamp and date
// layouts, and the quarter spellings "2023Q2", "2023-Q2" and "Q2 2023"
// (mapped to the first day of the quarter). A bare four-digit year maps to
// January 1st.
func ParseDate(s string) (time.Time, bool) {
	st := strings.TrimSpace(s)
	if st == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, st); err == nil {
			return t, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, st); err == nil {
			return t, true
		}
	}
	if t, ok := parseQuarter(st); ok {
		return t, true
	}
	if len(st) == 4 {
		if y, err := strconv.Atoi(st); err == nil && y > 0 {
			return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseQuarter accepts "2023Q2", "2023-Q2", "2023 Q2", "Q2 2023", "Q2-2023"
// case-insensitively.
func parseQuarter(s string) (time.Time, bool) {
	u := strings.ToUpper(strings.NewReplacer("-", "", " ", "", "/", "").Replace(s))
	var year, q string
	switch {
	case len(u) == 6 && u[4] == 'Q':
		year, q = u[:4], u[5:]
	case len(u) == 6 && u[0] == 'Q':
		q, year = u[1:2], u[2:]
	default:
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil || y <= 0 {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(q)
	if err != nil || n < 1 || n > 4 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(3*(n-1)+1), 1, 0, 0, 0, 0, time.UTC), true
}
