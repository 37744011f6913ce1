package http

import (
	"fmt"
	"net/http"

	apierrors "twstock/internal/errors"
)

// Resource names used in not found details.
const (
	resourceStock = "股票代碼"
	resourceDate  = "日期"
)

// Request parameter structs. Handlers seed the numeric fields from
// config.QueryConfig before decoding; the default tags apply when a field is
// still zero.

// HistoryParams are the parameters of GET /stock/{code}.
type HistoryParams struct {
	Code  string `param:"code" validate:"required"`
	Limit int    `query:"limit" default:"100" validate:"min=0"`
}

// CodeParams identify one instrument.
type CodeParams struct {
	Code string `param:"code" validate:"required"`
}

// StatsParams are the parameters of GET /stock/{code}/stats.
type StatsParams struct {
	Code string `param:"code" validate:"required"`
	Days int    `query:"days" default:"20" validate:"min=0"`
}

// RangeParams are the parameters of GET /analysis/range.
type RangeParams struct {
	Code  string `query:"code" validate:"required"`
	Start string `query:"start" validate:"required,datekey"`
	End   string `query:"end" validate:"required,datekey"`
}

// CompareParams are the parameters of GET /analysis/compare.
type CompareParams struct {
	Codes string `query:"codes" validate:"required"`
	Days  int    `query:"days" default:"20" validate:"min=0"`
}

// SummaryParams are the parameters of GET /analysis/summary.
type SummaryParams struct {
	Codes string `query:"codes" validate:"required"`
}

// DateParams identify one snapshot.
type DateParams struct {
	Date string `param:"date" validate:"required"`
}

// RankParams are the parameters of the gainers and losers routes.
type RankParams struct {
	Date  string `param:"date" validate:"required"`
	Limit int    `query:"limit" default:"10" validate:"min=0"`
}

// checkMax rejects a row count above the configured maximum.
func checkMax(field string, value, max int) error {
	if max > 0 && value > max {
		return apierrors.InvalidParameter(field, fmt.Sprintf("%s must be at most %d", field, max))
	}
	return nil
}

// Decoder decodes and validates request parameters into dst.
type Decoder interface {
	Decode(r *http.Request, dst any) error
}
