// Package services implements the query layer of the stock API. It sits
// between the HTTP handlers and the table package: handlers parse request
// parameters, services load tables, run queries and return values that are
// safe to encode as JSON.
//
// # Services
//
//	StockService     history, latest row and window statistics of one instrument
//	AnalysisService  date range of one instrument, compare and summary batches
//	DailyService     daily market snapshots and gainer/loser rankings
//	Catalog          identifiers available on disk
//	HealthService    health, liveness and readiness
//
// # Errors
//
// Single-entity queries return the table package errors unchanged so that
// callers can match them with errors.Is:
//
//	table.ErrNotFound       the instrument or snapshot file does not exist
//	table.ErrMissingColumn  the file lacks a column the query needs
//	table.ErrEmptyTable     the file has no rows to answer from
//	table.ErrParseFailure   the file cannot be decoded or parsed
//
// Batch queries never fail because of one identifier. Each identifier
// produces an ItemResult; failed items are logged at warn level, counted in
// twstock_batch_items_dropped_total and left out of the response.
//
// # Observability
//
// Every query runs in a span named query.<operation> and records its
// duration in twstock_query_duration_seconds when metrics are configured
// with WithMetrics.
package services
