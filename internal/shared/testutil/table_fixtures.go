package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/traditionalchinese"
)

// TableFixtures writes table files into a data directory laid out as
// <dir>/stock and <dir>/daily.
type TableFixtures struct {
	t        *testing.T
	StockDir string
	DailyDir string
}

// NewTableFixtures creates the stock and daily directories under dir.
func NewTableFixtures(t *testing.T, dir string) *TableFixtures {
	t.Helper()
	f := &TableFixtures{
		t:        t,
		StockDir: filepath.Join(dir, "stock"),
		DailyDir: filepath.Join(dir, "daily"),
	}
	for _, d := range []string{f.StockDir, f.DailyDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}
	return f
}

// WriteCSV writes lines as <dir>/<id>.csv and returns the path.
func WriteCSV(t *testing.T, dir, id string, lines ...string) string {
	t.Helper()
	return WriteRaw(t, dir, id, []byte(strings.Join(lines, "\n")+"\n"))
}

// WriteRaw writes data as <dir>/<id>.csv and returns the path.
func WriteRaw(t *testing.T, dir, id string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, id+".csv")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Big5 encodes s as Big5.
func Big5(t *testing.T, s string) []byte {
	t.Helper()
	out, err := traditionalchinese.Big5.NewEncoder().String(s)
	if err != nil {
		t.Fatalf("big5 encode: %v", err)
	}
	return []byte(out)
}

// HistoryLines returns an instrument history with one row per day of
// January 2024 starting on the 1st. Close is 100+day, High is Close+1 and
// Low is Close-1.
func HistoryLines(days int) []string {
	lines := []string{"Date,Open,High,Low,Close,Volume"}
	for d := 1; d <= days; d++ {
		c := 100 + d
		lines = append(lines, fmt.Sprintf("202401%02d,%d,%d,%d,%d,%d", d, c, c+1, c-1, c, 1000*d))
	}
	return lines
}

// History writes HistoryLines(days) for instrument id.
func (f *TableFixtures) History(id string, days int) string {
	f.t.Helper()
	return WriteCSV(f.t, f.StockDir, id, HistoryLines(days)...)
}

// Stock writes an instrument file with the given lines.
func (f *TableFixtures) Stock(id string, lines ...string) string {
	f.t.Helper()
	return WriteCSV(f.t, f.StockDir, id, lines...)
}

// Daily writes a snapshot file for date with the given lines.
func (f *TableFixtures) Daily(date string, lines ...string) string {
	f.t.Helper()
	return WriteCSV(f.t, f.DailyDir, date, lines...)
}

// Snapshot writes a small daily snapshot with a ChangePercent column.
func (f *TableFixtures) Snapshot(date string) string {
	f.t.Helper()
	return f.Daily(date,
		"Code,Name,Close,ChangePercent",
		"2330,台積電,590,1.2",
		"2317,鴻海,104.5,-0.5",
		"2454,聯發科,760,3.4",
		"2412,中華電,118,",
		"1301,台塑,80.1,-2.75",
	)
}
