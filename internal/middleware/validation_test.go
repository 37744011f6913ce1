package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "twstock/internal/errors"
)

type testParams struct {
	Code  string `param:"code" validate:"required"`
	Limit int    `query:"limit" default:"100" validate:"min=1,max=5000"`
	Start int64  `query:"start" validate:"omitempty,datekey"`
	Date  string `query:"date" validate:"omitempty,datekey"`
}

func requestWithCode(target, code string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("code", code)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestParamValidator_Decode(t *testing.T) {
	pv := NewParamValidator(nil)

	t.Run("defaults", func(t *testing.T) {
		var p testParams
		require.NoError(t, pv.Decode(requestWithCode("/stock/2330", "2330"), &p))
		assert.Equal(t, "2330", p.Code)
		assert.Equal(t, 100, p.Limit)
		assert.Zero(t, p.Start)
	})

	t.Run("query values", func(t *testing.T) {
		var p testParams
		require.NoError(t, pv.Decode(requestWithCode("/x?limit=5&start=20240101&date=20240102", "2330"), &p))
		assert.Equal(t, 5, p.Limit)
		assert.Equal(t, int64(20240101), p.Start)
		assert.Equal(t, "20240102", p.Date)
	})

	t.Run("not an integer", func(t *testing.T) {
		var p testParams
		err := pv.Decode(requestWithCode("/x?limit=ten", "2330"), &p)

		var apiErr *apierrors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "INVALID_PARAMETER", apiErr.ErrorCode)
		assert.Equal(t, []apierrors.ValidationError{{Field: "limit", Message: "limit must be an integer"}}, apiErr.Details)
	})

	tests := []struct {
		name   string
		target string
		code   string
		field  string
		tag    string
	}{
		{"limit too small", "/x?limit=0", "2330", "limit", "min"},
		{"limit too large", "/x?limit=5001", "2330", "limit", "max"},
		{"bad date int", "/x?start=20241345", "2330", "start", "datekey"},
		{"bad date string", "/x?date=2024-01-02", "2330", "date", "datekey"},
		{"missing code", "/x", "", "code", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p testParams
			err := pv.Decode(requestWithCode(tt.target, tt.code), &p)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
			assert.Equal(t, tt.tag, verrs[0].Tag())
		})
	}
}

func TestParamValidator_Var(t *testing.T) {
	pv := NewParamValidator(nil)

	assert.NoError(t, pv.Var("20240229", "datekey"))
	assert.Error(t, pv.Var("20230229", "datekey"))
	assert.NoError(t, pv.Var(int64(20240101), "datekey"))
	assert.Error(t, pv.Var(int64(2024), "datekey"))
}
