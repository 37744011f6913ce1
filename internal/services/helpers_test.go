package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"twstock/internal/config"
	"twstock/internal/shared/testutil"
	"twstock/internal/table"
)

// MockTableLoader is a mock for the TableLoader interface
type MockTableLoader struct {
	mock.Mock
}

func (m *MockTableLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*table.Table), args.Error(1)
}

// testPaths creates the data layout under a temp dir.
func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	paths, err := config.ResolvePaths(config.PathsConfig{BaseDir: base})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTable(t *testing.T, dir, id string, lines ...string) {
	t.Helper()
	testutil.WriteCSV(t, dir, id, lines...)
}

// writeHistory writes an instrument file with one row per day starting at
// 20240101. Close is 100+day, High Close+1, Low Close-1.
func writeHistory(t *testing.T, dir, id string, days int) {
	t.Helper()
	testutil.WriteCSV(t, dir, id, testutil.HistoryLines(days)...)
}
