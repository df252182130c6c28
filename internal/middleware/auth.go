package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kiwari-pos/tableside/internal/auth"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	staffKey  contextKey = "staff"
)

// Identify resolves the server working the terminal. A request without a
// token is attributed to defaultServer; a request with a bad token is
// rejected. Nothing is authorized here.
func Identify(jwtSecret, defaultServer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			ctx := r.Context()
			if tokenStr == "" {
				ctx = context.WithValue(ctx, staffKey, defaultServer)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, tokenStr)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx = context.WithValue(ctx, claimsKey, claims)
			ctx = context.WithValue(ctx, staffKey, claims.StaffName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter used by websocket clients. ok is false for a malformed
// header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return r.URL.Query().Get("token"), true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// StaffFromContext returns the identified server, empty outside Identify.
func StaffFromContext(ctx context.Context) string {
	staff, _ := ctx.Value(staffKey).(string)
	return staff
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
