package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration. Empty lists fall back to the
// read-only defaults: GET, HEAD and OPTIONS, with X-Request-ID exposed.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
	Logger           *slog.Logger
}

// corsPolicy is a CORSConfig with its header values rendered once.
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]bool
	credentials bool
	headers     http.Header
	logger      *slog.Logger
}

func newCORSPolicy(c CORSConfig) *corsPolicy {
	p := &corsPolicy{
		origins:     make(map[string]bool, len(c.AllowedOrigins)),
		credentials: c.AllowCredentials,
		headers:     make(http.Header),
		logger:      c.Logger,
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[strings.ToLower(o)] = true
	}
	if len(c.AllowedOrigins) == 0 {
		p.anyOrigin = true
	}

	p.headers.Set("Access-Control-Allow-Methods", joinOr(c.AllowedMethods, "GET, HEAD, OPTIONS"))
	p.headers.Set("Access-Control-Allow-Headers", joinOr(c.AllowedHeaders, "Accept, Content-Type, "+RequestIDHeader))
	p.headers.Set("Access-Control-Expose-Headers", joinOr(c.ExposedHeaders, RequestIDHeader))
	maxAge := c.MaxAge
	if maxAge == 0 {
		maxAge = 300
	}
	p.headers.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
	if c.AllowCredentials {
		p.headers.Set("Access-Control-Allow-Credentials", "true")
	}
	return p
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is refused. A credentialed wildcard echoes the origin.
func (p *corsPolicy) allowOrigin(origin string) string {
	if p.anyOrigin && !p.credentials {
		return "*"
	}
	if origin == "" {
		return ""
	}
	if p.anyOrigin || p.origins[strings.ToLower(origin)] {
		return origin
	}
	return ""
}

// CORS answers preflight requests and decorates every response with the
// configured access-control headers.
func CORS(config CORSConfig) func(next http.Handler) http.Handler {
	policy := newCORSPolicy(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			if allow := policy.allowOrigin(origin); allow != "" {
				h.Set("Access-Control-Allow-Origin", allow)
				if allow != "*" {
					h.Add("Vary", "Origin")
				}
			}
			for k, v := range policy.headers {
				h[k] = v
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			if policy.logger != nil {
				policy.logger.DebugContext(r.Context(), "CORS preflight",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
