// Package charts renders EDA figures for review record sets as PNG files
package charts

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"reviewpipe/internal/core/records"
)

// Count is one bar
type Count struct {
	Label string
	N     int
}

// LabelCounts counts the rendered labels of column; missing values are skipped.
// Numeric labels sort numerically, everything else lexically
func LabelCounts(s records.Set, column string) []Count {
	m := map[string]int{}
	for _, v := range s.Column(column) {
		if l, ok := records.Label(v); ok {
			m[l]++
		}
	}
	out := make([]Count, 0, len(m))
	for l, n := range m {
		out = append(out, Count{Label: l, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.ParseFloat(out[i].Label, 64)
		b, errB := strconv.ParseFloat(out[j].Label, 64)
		if errA == nil && errB == nil && a != b {
			return a < b
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// TermCounts returns the n most frequent whitespace tokens of column, most frequent first, ties alphabetical
func TermCounts(s records.Set, column string, n int) []Count {
	m := map[string]int{}
	for _, v := range s.Column(column) {
		for _, tok := range strings.Fields(records.Text(v)) {
			m[tok]++
		}
	}
	out := make([]Count, 0, len(m))
	for t, c := range m {
		out = append(out, Count{Label: t, N: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Series is a per-label daily count line
type Series struct {
	Label  string
	Days   []time.Time
	Counts []int
}

// DailyCounts buckets rows by UTC day of dateColumn and label of labelColumn.
// Rows missing either value are skipped. Series sort by label, days ascending
func DailyCounts(s records.Set, dateColumn, labelColumn string) []Series {
	byLabel := map[string]map[time.Time]int{}
	for _, r := range s.Rows {
		ts, ok := records.Time(r[dateColumn])
		if !ok {
			continue
		}
		l, ok := records.Label(r[labelColumn])
		if !ok {
			continue
		}
		day := ts.UTC().Truncate(24 * time.Hour)
		if byLabel[l] == nil {
			byLabel[l] = map[time.Time]int{}
		}
		byLabel[l][day]++
	}

	out := make([]Series, 0, len(byLabel))
	for l, days := range byLabel {
		ser := Series{Label: l}
		for d := range days {
			ser.Days = append(ser.Days, d)
		}
		sort.Slice(ser.Days, func(i, j int) bool { return ser.Days[i].Before(ser.Days[j]) })
		for _, d := range ser.Days {
			ser.Counts = append(ser.Counts, days[d])
		}
		out = append(out, ser)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
