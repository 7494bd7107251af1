package tablestore

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one flat row. Cells are normalised to text at the client boundary:
// numbers keep their decimal form and null becomes "".
type Row map[string]string

// String returns the cell for column, or "" when absent.
func (r Row) String(column string) string { return r[column] }

// Float parses the cell for column. An absent or empty cell reads as zero.
func (r Row) Float(column string) (float64, error) {
	v := strings.TrimSpace(r[column])
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return f, nil
}

// FormatFloat renders f the way numeric fields are sent in create requests.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Project keeps only the named columns; a "*" projection returns r unchanged.
func (r Row) Project(columns []string) Row {
	if len(columns) == 0 {
		return r
	}
	for _, c := range columns {
		if c == "*" {
			return r
		}
	}
	out := make(Row, len(columns))
	for _, c := range columns {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

// Matches reports whether every filter equals the row's cell.
func (r Row) Matches(filters map[string]string) bool {
	for k, want := range filters {
		got, ok := r[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
