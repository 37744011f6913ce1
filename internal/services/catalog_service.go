package services

import (
	"context"
	"fmt"
	"log/slog"

	"twstock/internal/config"
	"twstock/internal/files"
)

// Catalog lists the identifiers available in the data directories.
type Catalog struct {
	paths     *config.Paths
	discovery *files.Discovery
	logger    *slog.Logger
}

// CatalogListing is the response of the list operations.
type CatalogListing struct {
	Total int      `json:"total"`
	Items []string `json:"items"`
}

// NewCatalog creates a catalog over paths.
func NewCatalog(paths *config.Paths, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		paths:     paths,
		discovery: files.NewDiscovery(paths.DataDir),
		logger:    logger.With(slog.String("component", "catalog")),
	}
}

// Stocks lists the instrument identifiers with a history file.
func (c *Catalog) Stocks(ctx context.Context) (*CatalogListing, error) {
	return c.list(ctx, c.paths.StockDir)
}

// Dates lists the dates with a snapshot file.
func (c *Catalog) Dates(ctx context.Context) (*CatalogListing, error) {
	return c.list(ctx, c.paths.DailyDir)
}

func (c *Catalog) list(ctx context.Context, dir string) (*CatalogListing, error) {
	ids, err := c.discovery.ListIDs(dir)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to list table files",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return &CatalogListing{Total: len(ids), Items: ids}, nil
}

// Latest returns the most recently modified snapshot file, if any.
func (c *Catalog) Latest(ctx context.Context) (files.FileInfo, bool, error) {
	found, err := c.discovery.FindCSVFiles(c.paths.DailyDir)
	if err != nil {
		return files.FileInfo{}, false, fmt.Errorf("list %s: %w", c.paths.DailyDir, err)
	}
	latest, ok := files.GetLatestFile(found)
	return latest, ok, nil
}
