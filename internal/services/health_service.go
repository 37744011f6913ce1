package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"twstock/internal/config"
	"twstock/internal/files"
)

// Health status values
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthMessage is reported by the root health check.
const HealthMessage = "API 運作正常"

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	discovery *files.Discovery
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Version   string         `json:"version"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Runtime   map[string]any `json:"runtime,omitempty"`
	Services  map[string]any `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Files   int    `json:"files"`
}

// SystemStats represents data directory statistics
type SystemStats struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	StockFiles     int     `json:"stock_files"`
	DailyFiles     int     `json:"daily_files"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("data_dir", paths.DataDir))

	return &HealthService{
		version:   version,
		paths:     paths,
		discovery: files.NewDiscovery(paths.DataDir),
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:  StatusOK,
		Message: HealthMessage,
		Version: hs.version,
	}
}

// ReadinessCheck reports ready when both data directories can be listed.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	now := time.Now()
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: &now,
		Version:   hs.version,
		Services: map[string]any{
			"stock": hs.checkDir(hs.paths.StockDir),
			"daily": hs.checkDir(hs.paths.DailyDir),
		},
	}

	for name, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "ReadinessCheck: directory not ready",
				slog.String("service", name),
				slog.String("message", sh.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	now := time.Now()
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: &now,
		Version:   hs.version,
		Runtime: map[string]any{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	return map[string]any{
		"name":         config.AppName,
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// SystemStats returns statistics over the data directories
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	stock, err := hs.discovery.FindCSVFiles(hs.paths.StockDir)
	if err != nil {
		return SystemStats{}, err
	}
	daily, err := hs.discovery.FindCSVFiles(hs.paths.DailyDir)
	if err != nil {
		return SystemStats{}, err
	}

	var totalSize int64
	for _, f := range append(stock, daily...) {
		totalSize += f.Size
	}

	return SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		StockFiles:     len(stock),
		DailyFiles:     len(daily),
		TotalSizeBytes: totalSize,
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}, nil
}

// checkDir checks that dir exists and can be listed. Readiness never
// writes to the data directories.
func (hs *HealthService) checkDir(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Data directory not found: %s", filepath.Base(dir)),
		}
	}
	if !info.IsDir() {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Not a directory: %s", filepath.Base(dir)),
		}
	}

	found, err := hs.discovery.FindCSVFiles(dir)
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Cannot read data directory: %v", err),
		}
	}

	return ServiceHealth{
		Status: StatusReady,
		Files:  len(found),
	}
}
