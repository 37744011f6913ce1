package table

import (
	"math"
	"strconv"
)

// ColumnType is the scalar type inferred for a column at load time.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	TypeFloat
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	default:
		return "text"
	}
}

// MarshalText encodes the type by name.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Numeric reports whether values of this type compare as numbers.
func (t ColumnType) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Column is a named, typed column.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Table is an immutable ordered set of rows sharing the same columns.
// Cell values are nil, int64, float64 or string depending on the column type.
// Every operation on a Table returns a new Table; rows are never modified
// in place, so tables can be shared across goroutines.
type Table struct {
	columns []Column
	index   map[string]int
	rows    [][]any
}

// New builds a table from columns and rows. Rows shorter than the column
// list are padded with nil.
func New(columns []Column, rows [][]any) *Table {
	t := &Table{
		columns: append([]Column(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]any, 0, len(rows)),
	}
	for i, c := range t.columns {
		t.index[c.Name] = i
	}
	for _, r := range rows {
		row := make([]any, len(columns))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t
}

// Empty returns a table with the given columns and no rows.
func Empty(columns ...Column) *Table {
	return New(columns, nil)
}

// withRows shares the column metadata of t and takes ownership of rows.
func (t *Table) withRows(rows [][]any) *Table {
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns returns a copy of the column list in file order.
func (t *Table) Columns() []Column {
	if t == nil {
		return nil
	}
	return append([]Column(nil), t.columns...)
}

// HasColumn reports whether the table has a column named name.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or ErrMissingColumn.
func (t *Table) Column(name string) (Column, error) {
	if t == nil {
		return Column{}, MissingColumnError(name)
	}
	i, ok := t.index[name]
	if !ok {
		return Column{}, MissingColumnError(name)
	}
	return t.columns[i], nil
}

// Values returns the cells of the named column in row order.
func (t *Table) Values(name string) ([]any, error) {
	if _, err := t.Column(name); err != nil {
		return nil, err
	}
	j := t.index[name]
	out := make([]any, len(t.rows))
	for i := range t.rows {
		out[i] = t.rows[i][j]
	}
	return out, nil
}

// NumericColumn returns the named column, failing when it is absent or not
// numeric.
func (t *Table) NumericColumn(name string) (Column, error) {
	c, err := t.Column(name)
	if err != nil {
		return Column{}, err
	}
	if !c.Type.Numeric() {
		return Column{}, TypeMismatchError(name, TypeFloat, c.Type)
	}
	return c, nil
}

// Row returns row i as a name-keyed mapping.
func (t *Table) Row(i int) Row {
	r := make(Row, len(t.columns))
	for j, c := range t.columns {
		r[c.Name] = t.rows[i][j]
	}
	return r
}

// Records returns every row as a name-keyed mapping, in table order.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, t.Row(i))
	}
	return out
}

// value returns the cell at row i for the column at index j.
func (t *Table) value(i, j int) any {
	return t.rows[i][j]
}

// Row maps column names to cell values.
type Row map[string]any

// Value returns the raw value of column name.
func (r Row) Value(name string) (any, error) {
	v, ok := r[name]
	if !ok {
		return nil, MissingColumnError(name)
	}
	return v, nil
}

// Float returns the numeric value of column name. ok is false for null cells.
func (r Row) Float(name string) (f float64, ok bool, err error) {
	v, err := r.Value(name)
	if err != nil {
		return 0, false, err
	}
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return float64(n), true, nil
	case float64:
		return n, true, nil
	default:
		return 0, false, TypeMismatchError(name, TypeFloat, TypeText)
	}
}

// Int returns the integer value of column name. ok is false for null cells.
func (r Row) Int(name string) (i int64, ok bool, err error) {
	v, err := r.Value(name)
	if err != nil {
		return 0, false, err
	}
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return n, true, nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true, nil
		}
		return 0, false, TypeMismatchError(name, TypeInt, TypeFloat)
	default:
		return 0, false, TypeMismatchError(name, TypeInt, TypeText)
	}
}

// String returns the textual form of column name. Numbers are formatted
// without exponent; null cells return ok false.
func (r Row) String(name string) (s string, ok bool, err error) {
	v, err := r.Value(name)
	if err != nil {
		return "", false, err
	}
	switch n := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return n, true, nil
	case int64:
		return strconv.FormatInt(n, 10), true, nil
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true, nil
	default:
		return "", false, TypeMismatchError(name, TypeText, TypeText)
	}
}

// numeric converts a cell of a numeric column to float64.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
