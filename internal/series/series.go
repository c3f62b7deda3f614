// Package series holds daily observation tables: one row per calendar day,
// one float column per climate parameter. Missing observations are NaN.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DateFormat is the on-disk representation of the datetime column.
const DateFormat = "2006-01-02"

// Row is a single day of observations. Values align with Daily.Columns.
type Row struct {
	Date   time.Time
	Values []float64
}

// Daily is an ordered daily table.
type Daily struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given parameter columns.
func New(columns ...string) *Daily {
	return &Daily{Columns: columns}
}

// Add appends one day of observations. Values must match the column count.
func (d *Daily) Add(date time.Time, values ...float64) error {
	if len(values) != len(d.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(d.Columns))
	}
	d.Rows = append(d.Rows, Row{Date: date.Truncate(24 * time.Hour), Values: values})
	return nil
}

// Len returns the number of rows.
func (d *Daily) Len() int {
	return len(d.Rows)
}

// Column returns the index of the named column, or -1.
func (d *Daily) Column(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the observation for a date/column pair. The second return
// is false when the date is absent or the value is missing.
func (d *Daily) Value(date time.Time, column string) (float64, bool) {
	ci := d.Column(column)
	if ci < 0 {
		return 0, false
	}
	key := date.Format(DateFormat)
	for _, row := range d.Rows {
		if row.Date.Format(DateFormat) == key {
			v := row.Values[ci]
			return v, !math.IsNaN(v)
		}
	}
	return 0, false
}

// Sort orders rows by ascending date.
func (d *Daily) Sort() {
	sort.Slice(d.Rows, func(i, j int) bool {
		return d.Rows[i].Date.Before(d.Rows[j].Date)
	})
}

// sameColumns reports whether two tables carry an identical column set.
func sameColumns(a, b *Daily) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

// Merge combines an existing table with an update. Dates present in both
// take the update's values; dates unique to either side are kept. The
// result is sorted by date. Column sets must match.
func Merge(old, update *Daily) (*Daily, error) {
	if !sameColumns(old, update) {
		return nil, fmt.Errorf("merge: column sets differ (%v vs %v)", old.Columns, update.Columns)
	}

	updated := make(map[string]struct{}, len(update.Rows))
	for _, row := range update.Rows {
		updated[row.Date.Format(DateFormat)] = struct{}{}
	}

	out := New(old.Columns...)
	for _, row := range old.Rows {
		if _, ok := updated[row.Date.Format(DateFormat)]; ok {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	out.Rows = append(out.Rows, update.Rows...)
	out.Sort()
	return out, nil
}
