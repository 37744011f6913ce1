package table

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, csv string) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(csv), ',')
	require.NoError(t, err)
	return tbl
}

// tenDays builds a history for 20240101..20240110 in file order.
func tenDays(t *testing.T) *Table {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Close\n")
	for d := 1; d <= 10; d++ {
		fmt.Fprintf(&b, "202401%02d,%d\n", d, 100+d)
	}
	return mustParse(t, b.String())
}

func dates(t *testing.T, tbl *Table) []int64 {
	t.Helper()
	col, err := tbl.Values("Date")
	require.NoError(t, err)
	out := make([]int64, 0, len(col))
	for _, v := range col {
		out = append(out, v.(int64))
	}
	return out
}

func TestSortByColumn(t *testing.T) {
	t.Run("descending then head", func(t *testing.T) {
		sorted, err := SortByColumn(tenDays(t), "Date", true)
		require.NoError(t, err)

		got := Head(sorted, 5)
		assert.Equal(t, []int64{20240110, 20240109, 20240108, 20240107, 20240106}, dates(t, got))
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		tbl := mustParse(t, "Date,Tag\n20240102,a\n20240101,b\n20240102,c\n")
		sorted, err := SortByColumn(tbl, "Date", true)
		require.NoError(t, err)

		col, err := sorted.Values("Tag")
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "c", "b"}, col)
	})

	t.Run("nulls last in both directions", func(t *testing.T) {
		tbl := mustParse(t, "Date,ChangePercent\n1,2.5\n2,\n3,-1\n")

		desc, err := SortByColumn(tbl, "ChangePercent", true)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3, 2}, dates(t, desc))

		asc, err := SortByColumn(tbl, "ChangePercent", false)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 1, 2}, dates(t, asc))
	})

	t.Run("source table untouched", func(t *testing.T) {
		tbl := tenDays(t)
		_, err := SortByColumn(tbl, "Date", true)
		require.NoError(t, err)
		assert.Equal(t, int64(20240101), tbl.Row(0)["Date"])
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := SortByColumn(tenDays(t), "Volume", true)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("text column", func(t *testing.T) {
		tbl := mustParse(t, "Date,Name\n1,x\n")
		_, err := SortByColumn(tbl, "Name", true)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestHead(t *testing.T) {
	tbl := tenDays(t)

	tests := []struct {
		n    int
		want int
	}{
		{n: 0, want: 0},
		{n: -3, want: 0},
		{n: 3, want: 3},
		{n: 10, want: 10},
		{n: 50, want: 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			got := Head(tbl, tt.n)
			assert.Equal(t, tt.want, got.Len())
			assert.Equal(t, tbl.Columns(), got.Columns())
		})
	}
}

func TestFilterDateRange(t *testing.T) {
	tbl := tenDays(t)

	t.Run("inclusive bounds", func(t *testing.T) {
		got, err := FilterDateRange(tbl, "Date", 20240103, 20240105)
		require.NoError(t, err)
		assert.Equal(t, []int64{20240103, 20240104, 20240105}, dates(t, got))
	})

	t.Run("start after end", func(t *testing.T) {
		got, err := FilterDateRange(tbl, "Date", 20240105, 20240103)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Len())
	})

	t.Run("never grows the table", func(t *testing.T) {
		got, err := FilterDateRange(tbl, "Date", 0, math.MaxInt64)
		require.NoError(t, err)
		assert.Equal(t, tbl.Len(), got.Len())
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := FilterDateRange(tbl, "TradeDate", 1, 2)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}

func TestLatestRow(t *testing.T) {
	t.Run("greatest date", func(t *testing.T) {
		tbl := mustParse(t, "Date,Close\n20240103,12\n20240105,15\n20240104,13\n")
		row, err := LatestRow(tbl, "Date")
		require.NoError(t, err)
		assert.Equal(t, int64(20240105), row["Date"])
		assert.Equal(t, int64(15), row["Close"])
	})

	t.Run("empty table", func(t *testing.T) {
		tbl := mustParse(t, "Date,Close\n")
		_, err := LatestRow(tbl, "Date")
		assert.ErrorIs(t, err, ErrEmptyTable)
	})
}

func TestAggregate(t *testing.T) {
	t.Run("three closes", func(t *testing.T) {
		tbl := mustParse(t, "Date,Close\n20240103,10\n20240102,20\n20240101,5\n")
		s, err := Aggregate(tbl, "Close")
		require.NoError(t, err)

		require.NotNil(t, s.Latest)
		assert.Equal(t, 10.0, *s.Latest)
		assert.InDelta(t, 11.6667, *s.Mean, 0.001)
		assert.Equal(t, 20.0, *s.Max)
		assert.Equal(t, 5.0, *s.Min)
		assert.Equal(t, 3, s.Count)
	})

	t.Run("skips nulls", func(t *testing.T) {
		tbl := mustParse(t, "Date,Close\n3,\n2,4\n1,8\n")
		s, err := Aggregate(tbl, "Close")
		require.NoError(t, err)

		assert.Nil(t, s.Latest)
		assert.Equal(t, 6.0, *s.Mean)
		assert.Equal(t, 3, s.Count)
	})

	t.Run("empty table yields undefined stats", func(t *testing.T) {
		tbl := mustParse(t, "Date,Close\n")
		s, err := Aggregate(tbl, "Close")
		require.NoError(t, err)

		assert.Nil(t, s.Latest)
		assert.Nil(t, s.Mean)
		assert.Nil(t, s.Max)
		assert.Nil(t, s.Min)
		assert.Zero(t, s.Count)
	})

	t.Run("infinity propagates", func(t *testing.T) {
		tbl := mustParse(t, "Date,Close\n2,inf\n1,1\n")
		s, err := Aggregate(tbl, "Close")
		require.NoError(t, err)
		assert.True(t, math.IsInf(*s.Mean, 1))
		assert.True(t, math.IsInf(*s.Max, 1))
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := Aggregate(tenDays(t), "High")
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}

func TestRowAccessors(t *testing.T) {
	row := mustParse(t, "Date,Close,Name\n20240101,10.5,AAA\n").Row(0)

	f, ok, err := row.Float("Close")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10.5, f)

	d, ok, err := row.Int("Date")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(20240101), d)

	_, _, err = row.Float("Name")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, _, err = row.Float("Volume")
	assert.ErrorIs(t, err, ErrMissingColumn)
}
