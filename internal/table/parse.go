package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errNoHeader = errors.New("no header row")

// nullTokens are cell values read as missing.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// Parse reads a delimited table with a header row from r. Column types are
// inferred from the content: a column is int when every non-null cell is an
// integer, float when every non-null cell is a number, and text otherwise.
// Rows with fewer fields than the header are padded with nulls; rows with
// more fields are an error.
func Parse(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := headerNames(header)

	var raw [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) > len(names) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(names), len(rec))
		}
		raw = append(raw, rec)
	}

	columns := make([]Column, len(names))
	rows := make([][]any, len(raw))
	for i := range rows {
		rows[i] = make([]any, len(names))
	}
	for j, name := range names {
		typ := inferType(raw, j)
		columns[j] = Column{Name: name, Type: typ}
		for i, rec := range raw {
			if j < len(rec) {
				rows[i][j] = convert(rec[j], typ)
			}
		}
	}

	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
		rows:    rows,
	}
	for i, c := range columns {
		t.index[c.Name] = i
	}
	return t, nil
}

// headerNames trims the header cells, names blank ones by position and
// suffixes duplicates with .1, .2 and so on.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		}
		if _, ok := seen[name]; !ok {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func isNull(cell string) bool {
	_, ok := nullTokens[strings.TrimSpace(cell)]
	return ok
}

func numericText(cell string) string {
	return strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
}

func inferType(raw [][]string, j int) ColumnType {
	typ := TypeInt
	seen := false
	for _, rec := range raw {
		if j >= len(rec) || isNull(rec[j]) {
			continue
		}
		seen = true
		s := numericText(rec[j])
		if typ == TypeInt {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			typ = TypeFloat
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return TypeText
		}
	}
	if !seen {
		// all-null columns carry no numbers to infer from
		return TypeFloat
	}
	return typ
}

func convert(cell string, typ ColumnType) any {
	if isNull(cell) {
		return nil
	}
	switch typ {
	case TypeInt:
		n, _ := strconv.ParseInt(numericText(cell), 10, 64)
		return n
	case TypeFloat:
		f, _ := strconv.ParseFloat(numericText(cell), 64)
		return f
	default:
		return cell
	}
}
