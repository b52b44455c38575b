// Package records is the in-memory tabular shape that flows between pipeline stages
package records

import (
	"database/sql/driver"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one row keyed by column name
// values are string, int64, float64, bool, time.Time or nil (missing)
type Record map[string]any

// Set is an ordered record set with a stable column order
type Set struct {
	Columns []string
	Rows    []Record
}

// New returns an empty Set with the given columns
func New(columns ...string) Set {
	return Set{Columns: append([]string(nil), columns...), Rows: []Record{}}
}

// Len returns the number of rows
func (s Set) Len() int { return len(s.Rows) }

// Empty reports whether the set has no rows
func (s Set) Empty() bool { return len(s.Rows) == 0 }

// HasColumn reports whether name is a known column
func (s Set) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the values of one column in row order (nil for missing)
func (s Set) Column(name string) []any {
	out := make([]any, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r[name]
	}
	return out
}

// Append adds a row and registers any unseen columns in first-seen order
func (s *Set) Append(r Record, order ...string) {
	for _, k := range order {
		if !s.HasColumn(k) {
			s.Columns = append(s.Columns, k)
		}
	}
	if s.Rows == nil {
		s.Rows = []Record{}
	}
	s.Rows = append(s.Rows, r)
}

// Clone deep-copies rows so callers can mutate without touching the source
func (s Set) Clone() Set {
	out := Set{Columns: append([]string(nil), s.Columns...), Rows: make([]Record, len(s.Rows))}
	for i, r := range s.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Text normalizes a value for text fields: only strings pass through, everything else is ""
func Text(v any) string {
	s, _ := v.(string)
	return s
}

// Label renders a class label; whole floats drop their fraction (5.0 -> "5")
// false when the value is missing or blank
func Label(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return FormatValue(x), true
	default:
		s := FormatValue(x)
		return s, s != ""
	}
}

// Float coerces numerics and numeric strings
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Time coerces time.Time values and common date layouts
func Time(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// FormatValue renders a value for CSV and labels; nil is ""
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return FormatValue(float64(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	default:
		return ""
	}
}

// Normalize maps driver/decoder values onto the Record value domain
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, string, int64, float64, bool, time.Time:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return nil
		}
		return Normalize(dv)
	case interface{ String() string }:
		return x.String()
	default:
		return x
	}
}
