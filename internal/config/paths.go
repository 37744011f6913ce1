package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths, resolved to absolute form.
// This is the single source of truth for file locations; services receive
// it by value and never derive paths on their own.
type Paths struct {
	BaseDir   string
	DataDir   string
	StockDir  string
	DailyDir  string
	StaticDir string
	LogsDir   string
}

// ResolvePaths resolves cfg against its base directory. An empty BaseDir
// means the directory of the running executable. Resolution has no side
// effects on the file system.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		dir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = dir
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := resolve(base, cfg.DataDir, DefaultDataDir)
	return &Paths{
		BaseDir:   base,
		DataDir:   dataDir,
		StockDir:  resolve(dataDir, cfg.StockDir, DefaultStockDir),
		DailyDir:  resolve(dataDir, cfg.DailyDir, DefaultDailyDir),
		StaticDir: resolve(base, cfg.StaticDir, DefaultStaticDir),
		LogsDir:   resolve(base, cfg.LogsDir, DefaultLogsDir),
	}, nil
}

func resolve(base, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// executableDir returns the directory of the running binary with symlinks
// resolved.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates the data directories if they don't exist.
// It is called once by the entry point; nothing else creates directories.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.StockDir,
		p.DailyDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// StockFile returns the path of the history file for instrument id.
func (p *Paths) StockFile(id string) string {
	return filepath.Join(p.StockDir, id+TableExt)
}

// DailyFile returns the path of the snapshot file for date.
func (p *Paths) DailyFile(date string) string {
	return filepath.Join(p.DailyDir, date+TableExt)
}

// StaticFile returns the path of a frontend asset.
func (p *Paths) StaticFile(name string) string {
	return filepath.Join(p.StaticDir, name)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("stock", p.StockDir),
			slog.String("daily", p.DailyDir),
			slog.String("static", p.StaticDir),
			slog.String("logs", p.LogsDir),
		))
}
