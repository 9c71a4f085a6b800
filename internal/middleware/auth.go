package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectKey is the context key for the authenticated subject claim.
const SubjectKey contextKey = "subject"

// AuthConfig holds configuration for the subject middleware.
type AuthConfig struct {
	Logger *slog.Logger
	// Secret is the HS256 signing secret for bearer tokens. Empty
	// disables token verification entirely.
	Secret string
}

// Subject extracts the authenticated subject from a bearer token when
// one is supplied. Requests without a token pass through unchanged; the
// payload's subject claim is then the only identity assertion, and the
// authorization guard downstream still has to match it against the
// acting user's external id. A token that is present but unverifiable
// is rejected outright.
func Subject(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearerToken(r)
			if raw == "" || cfg.Secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(cfg.Secret), nil
			})
			if err != nil || !token.Valid {
				cfg.Logger.Warn("bearer token rejected",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				cfg.Logger.Warn("bearer token rejected",
					slog.String("reason", "missing_subject"),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject retrieves the verified subject claim from context.
// Returns an empty string if no bearer token was presented.
func GetSubject(ctx context.Context) string {
	if sub, ok := ctx.Value(SubjectKey).(string); ok {
		return sub
	}
	return ""
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// writeAuthError writes a 401 Unauthorized response.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or expired credentials","code":"UNAUTHORIZED"}`))
}
