package store

import (
	"fmt"

	"reviewpipe/internal/core/records"
)

// Collect drains rows into a records.Set using Rows.Columns for order
// byte slices become strings and numerics are widened to int64/float64
func Collect(rows Rows) (records.Set, error) {
	cols := rows.Columns()
	out := records.New(cols...)
	for rows.Next() {
		r, err := scanRecord(rows, cols)
		if err != nil {
			return records.Set{}, err
		}
		out.Rows = append(out.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return records.Set{}, err
	}
	return out, nil
}

// scanRecord builds one Record from the current row position
func scanRecord(rows Rows, cols []string) (records.Record, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	r := make(records.Record, len(cols))
	for i, c := range cols {
		r[c] = records.Normalize(vals[i])
	}
	return r, nil
}
