// Package http implements the HTTP handlers of the query API.
//
// Handlers are thin: they decode and validate parameters, call a service
// through a small interface and render the result as JSON with go-chi/render.
// Errors are passed to apierrors.ErrorHandler, which answers with RFC 7807
// problem details. Handlers wrap service errors with the resource they were
// about (a stock code or a snapshot date) so that a missing file reads as
// "找不到股票代碼: 2330" rather than a file name.
//
// Routes mounted under /api/v1:
//
//	GET /stock                    instrument ids with a history file
//	GET /stock/{code}?limit=      latest rows, newest first
//	GET /stock/{code}/latest      row with the greatest Date
//	GET /stock/{code}/stats?days= close/high/low statistics
//	GET /analysis/range?code=&start=&end=
//	GET /analysis/compare?codes=&days=
//	GET /analysis/summary?codes=
//	GET /daily                    snapshot dates
//	GET /daily/latest             most recently written snapshot
//	GET /daily/{date}             snapshot rows in file order
//	GET /daily/{date}/gainers?limit=
//	GET /daily/{date}/losers?limit=
//
// Static frontend files, the raw data tree and the health and metrics
// endpoints are served by the helpers in html_handler.go, health_handler.go
// and metrics_handler.go.
package http
