package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twstock/internal/config"
)

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService(config.AppVersion, testPaths(t), discardLogger())

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, HealthMessage, status.Message)
	assert.Equal(t, "2.0.0", status.Version)
	assert.Nil(t, status.Timestamp)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	paths := testPaths(t)
	writeHistory(t, paths.StockDir, "AAA", 1)
	writeHistory(t, paths.StockDir, "BBB", 1)
	hs := NewHealthService(config.AppVersion, paths, discardLogger())
	ctx := context.Background()

	status := hs.ReadinessCheck(ctx)
	assert.Equal(t, StatusReady, status.Status)
	require.NotNil(t, status.Timestamp)

	stock := status.Services["stock"].(ServiceHealth)
	assert.Equal(t, StatusReady, stock.Status)
	assert.Equal(t, 2, stock.Files)
	assert.Equal(t, 0, status.Services["daily"].(ServiceHealth).Files)

	t.Run("missing directory", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(paths.DailyDir))

		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, StatusNotReady, status.Status)
		daily := status.Services["daily"].(ServiceHealth)
		assert.Equal(t, StatusNotReady, daily.Status)
		assert.Contains(t, daily.Message, "daily")
	})

	t.Run("readiness does not create directories", func(t *testing.T) {
		assert.NoDirExists(t, paths.DailyDir)
	})
}

func TestHealthService_LivenessCheck(t *testing.T) {
	hs := NewHealthService("test", testPaths(t), discardLogger())

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, status.Status)
	assert.Contains(t, status.Runtime, "uptime")
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_SystemStats(t *testing.T) {
	paths := testPaths(t)
	writeHistory(t, paths.StockDir, "AAA", 5)
	writeTable(t, paths.DailyDir, "20240105", "Code,ChangePercent", "A,1")
	hs := NewHealthService("test", paths, discardLogger())

	stats, err := hs.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StockFiles)
	assert.Equal(t, 1, stats.DailyFiles)
	assert.Positive(t, stats.TotalSizeBytes)

	version := hs.Version()
	assert.Equal(t, "test", version["version"])
	assert.Equal(t, config.AppName, version["name"])
}
