package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"twstock/internal/services"
	"twstock/internal/table"
)

// ResourceError names the resource a failed request addressed, so that
// problem details can say what was not found.
type ResourceError struct {
	Resource string
	ID       string
	Err      error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Resource, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// WithResource wraps err with the resource it is about. A nil err stays nil.
func WithResource(resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Resource: resource, ID: id, Err: err}
}

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("kind", table.KindOf(err).String()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if reqID != "" {
		problem.WithExtension("request_id", reqID)
	}
	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	problem.Write(w)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			"One or more parameters are invalid",
			path,
		).WithExtension("errors", validationErrors(verrs))
	}

	if errors.Is(err, services.ErrInvalidInput) || errors.Is(err, services.ErrTooManyIDs) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			err.Error(),
			path,
		)
	}

	return h.tableErrorToProblem(err, path)
}

// tableErrorToProblem maps the table error kinds. Causes are logged but
// never rendered, as they may hold file system paths.
func (h *ErrorHandler) tableErrorToProblem(err error, path string) *ProblemDetails {
	var subject string
	var te *table.Error
	if errors.As(err, &te) {
		subject = te.Subject
	}

	var res *ResourceError
	hasResource := errors.As(err, &res)

	switch table.KindOf(err) {
	case table.KindNotFound:
		detail := "The requested resource was not found"
		if hasResource {
			detail = fmt.Sprintf("找不到%s: %s", res.Resource, res.ID)
		}
		return NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", detail, path)

	case table.KindEmptyTable:
		detail := "The requested data set has no rows"
		if hasResource {
			detail = fmt.Sprintf("%s %s 沒有資料", res.Resource, res.ID)
		}
		return NewProblemDetails(http.StatusNotFound, TypeDataEmpty, "No Data", detail, path)

	case table.KindMissingColumn:
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Missing Column",
			fmt.Sprintf("資料中缺少 %s 欄位", subject),
			path,
		).WithExtension("column", subject)

	case table.KindTypeMismatch:
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Column Type Mismatch",
			fmt.Sprintf("欄位 %s 不是數值欄位", subject),
			path,
		).WithExtension("column", subject)

	case table.KindParseFailure:
		problem := NewProblemDetails(
			http.StatusInternalServerError,
			TypeDataCorrupted,
			"Data File Unreadable",
			"The data file could not be decoded or parsed",
			path,
		)
		if subject != "" {
			problem.WithExtension("file", subject)
		}
		return problem
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	)
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problem := NewProblemDetails(
		apiErr.StatusCode,
		typeForStatus(apiErr.StatusCode),
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// validationErrors renders validator errors with the parameter names.
func validationErrors(verrs validator.ValidationErrors) []ValidationError {
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), fe.Param())
		}
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: msg,
		})
	}
	return out
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	)
	if reqID != "" {
		problem.WithExtension("request_id", reqID)
	}

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	problem.Write(w)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	)
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		problem.WithExtension("request_id", reqID)
	}

	problem.Write(w)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethod,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	)
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		problem.WithExtension("request_id", reqID)
	}

	problem.Write(w)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
