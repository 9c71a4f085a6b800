// Package middleware provides HTTP middleware for the Meetlog API.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	// AllowedOrigins lists origins permitted to call the API. An entry
	// may use a leading wildcard ("*.example.com") to match subdomains.
	// Empty denies all cross-origin requests.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// ExposedHeaders are response headers the browser lets scripts read.
	ExposedHeaders []string
	// AllowCredentials must never be combined with a "*" origin.
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// DefaultCORSConfig returns defaults matching the API surface: JSON
// bodies, bearer tokens, and the rate limit headers a client needs to
// read to back off.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           86400,
	}
}

// CORS returns middleware handling cross-origin requests, including
// preflight. Disallowed origins get no CORS headers; a disallowed
// preflight is answered with 403.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")

	exact := make(map[string]bool, len(cfg.AllowedOrigins))
	var wildcards []string
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(origin)
		if strings.HasPrefix(origin, "*.") {
			wildcards = append(wildcards, strings.TrimPrefix(origin, "*"))
			continue
		}
		exact[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Same-origin request, nothing to negotiate.
				next.ServeHTTP(w, r)
				return
			}

			if !originAllowed(origin, exact, wildcards) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				// Without the headers the browser blocks the response.
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				w.Header().Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed matches an origin against the exact allow-list and the
// wildcard suffixes. "*.example.com" matches "https://app.example.com"
// but not "https://notexample.com".
func originAllowed(origin string, exact map[string]bool, wildcards []string) bool {
	origin = strings.ToLower(origin)
	if exact[origin] {
		return true
	}

	for _, suffix := range wildcards {
		if !strings.HasSuffix(origin, suffix) {
			continue
		}
		rest := strings.TrimSuffix(origin, suffix)
		if strings.HasSuffix(rest, "://") || strings.Contains(rest, ".") {
			return true
		}
	}

	return false
}
