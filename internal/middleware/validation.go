package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	apierrors "twstock/internal/errors"
	"twstock/internal/services"
)

// ParamValidator decodes path and query parameters into request structs and
// validates them with struct tags.
//
// Fields are bound by tag: `param:"code"` reads the chi URL parameter and
// `query:"limit"` the query string. Absent values keep the struct's
// `default` tag. Supported field kinds are string and the signed integers.
type ParamValidator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewParamValidator creates a validator with the datekey rule.
func NewParamValidator(logger *slog.Logger) *ParamValidator {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("datekey", isDateKey)

	// Report parameter names rather than Go field names.
	v.RegisterTagNameFunc(paramName)

	return &ParamValidator{
		validate: v,
		logger:   logger.With(slog.String("component", "param_validator")),
	}
}

// Decode fills dst, which must be a pointer to a struct, from r and
// validates it. Conversion failures are *apierrors.APIError values and rule
// failures are validator.ValidationErrors.
func (pv *ParamValidator) Decode(r *http.Request, dst any) error {
	if err := defaults.Set(dst); err != nil {
		return fmt.Errorf("apply parameter defaults: %w", err)
	}

	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	query := r.URL.Query()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)

		var raw string
		name := field.Tag.Get("param")
		if name != "" {
			raw = chi.URLParam(r, name)
		} else if name = field.Tag.Get("query"); name != "" {
			raw = query.Get(name)
		} else {
			continue
		}
		if raw == "" {
			continue
		}

		if err := setField(rv.Field(i), name, raw); err != nil {
			pv.logFailure(r, err)
			return err
		}
	}

	if err := pv.validate.Struct(dst); err != nil {
		pv.logFailure(r, err)
		return err
	}
	return nil
}

// Var validates a single value against tag.
func (pv *ParamValidator) Var(value any, tag string) error {
	return pv.validate.Var(value, tag)
}

func (pv *ParamValidator) logFailure(r *http.Request, err error) {
	pv.logger.DebugContext(r.Context(), "parameter validation failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
}

func setField(v reflect.Value, name, raw string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return apierrors.InvalidParameter(name, fmt.Sprintf("%s must be an integer", name))
		}
		v.SetInt(n)
	default:
		return fmt.Errorf("parameter %s: unsupported field kind %s", name, v.Kind())
	}
	return nil
}

func paramName(field reflect.StructField) string {
	if name := field.Tag.Get("param"); name != "" {
		return name
	}
	if name := field.Tag.Get("query"); name != "" {
		return name
	}
	return field.Name
}

// isDateKey accepts YYYYMMDD dates given as strings or integers.
func isDateKey(fl validator.FieldLevel) bool {
	var s string
	switch f := fl.Field(); f.Kind() {
	case reflect.String:
		s = f.String()
	case reflect.Int, reflect.Int32, reflect.Int64:
		s = strconv.FormatInt(f.Int(), 10)
	default:
		return false
	}
	_, err := services.ParseDateKey(s)
	return err == nil
}
