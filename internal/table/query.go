package table

import (
	"math"
	"sort"
)

// FilterDateRange keeps the rows whose column value lies in [start, end].
// Keys are compared as plain integers (YYYYMMDD), not calendar dates. Rows
// with a null key are dropped.
func FilterDateRange(t *Table, column string, start, end int64) (*Table, error) {
	if _, err := t.NumericColumn(column); err != nil {
		return nil, err
	}
	j := t.index[column]

	rows := make([][]any, 0, t.Len())
	for _, row := range t.rows {
		if inRange(row[j], start, end) {
			rows = append(rows, row)
		}
	}
	return t.withRows(rows), nil
}

func inRange(v any, start, end int64) bool {
	switch n := v.(type) {
	case int64:
		return start <= n && n <= end
	case float64:
		return float64(start) <= n && n <= float64(end)
	default:
		return false
	}
}

// SortByColumn returns t sorted by a numeric column. The sort is stable:
// rows with equal keys keep their file order. Null keys sort last in both
// directions.
func SortByColumn(t *Table, column string, descending bool) (*Table, error) {
	if _, err := t.NumericColumn(column); err != nil {
		return nil, err
	}
	j := t.index[column]

	rows := make([][]any, len(t.rows))
	copy(rows, t.rows)
	sort.SliceStable(rows, func(a, b int) bool {
		x, xok := sortKey(rows[a][j])
		y, yok := sortKey(rows[b][j])
		switch {
		case !xok:
			return false
		case !yok:
			return true
		case descending:
			return x > y
		default:
			return x < y
		}
	})
	return t.withRows(rows), nil
}

func sortKey(v any) (float64, bool) {
	f, ok := numeric(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Head returns the first n rows of t. n is clamped to the table length and
// n <= 0 yields an empty table with the same columns.
func Head(t *Table, n int) *Table {
	if n <= 0 {
		return t.withRows([][]any{})
	}
	if n > t.Len() {
		n = t.Len()
	}
	return t.withRows(t.rows[:n:n])
}

// LatestRow returns the row with the greatest value in dateColumn.
func LatestRow(t *Table, dateColumn string) (Row, error) {
	sorted, err := SortByColumn(t, dateColumn, true)
	if err != nil {
		return nil, err
	}
	if sorted.Len() == 0 {
		return nil, EmptyTableError(dateColumn)
	}
	return sorted.Row(0), nil
}

// Stats holds descriptive statistics over one numeric column. Pointer fields
// are nil when undefined: all of them for an empty table, Latest when the
// first row's cell is null.
type Stats struct {
	Column string
	Latest *float64
	Mean   *float64
	Max    *float64
	Min    *float64
	Count  int
}

// Aggregate computes Stats for column over every row currently in t. Latest
// is taken from the first row, so callers sort by date descending first.
// Null cells are skipped by Mean, Max and Min; Count is the row count.
func Aggregate(t *Table, column string) (Stats, error) {
	if _, err := t.NumericColumn(column); err != nil {
		return Stats{}, err
	}
	j := t.index[column]

	s := Stats{Column: column, Count: t.Len()}
	if t.Len() == 0 {
		return s, nil
	}
	if v, ok := numeric(t.value(0, j)); ok {
		s.Latest = &v
	}

	var sum, hi, lo float64
	n := 0
	for i := range t.rows {
		v, ok := numeric(t.value(i, j))
		if !ok || math.IsNaN(v) {
			continue
		}
		if n == 0 || v > hi {
			hi = v
		}
		if n == 0 || v < lo {
			lo = v
		}
		sum += v
		n++
	}
	if n > 0 {
		mean := sum / float64(n)
		s.Mean, s.Max, s.Min = &mean, &hi, &lo
	}
	return s, nil
}
