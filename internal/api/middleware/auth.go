package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/example/retail-backoffice/internal/auth"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const realm = "retail-backoffice"

type contextKey string

const OperatorContextKey contextKey = "operator"

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// challenge answers with a bearer challenge; code is empty when no token was sent
func challenge(w http.ResponseWriter, status int, code, message string) {
	value := fmt.Sprintf("Bearer realm=%q", realm)
	if code != "" {
		value += fmt.Sprintf(", error=%q, error_description=%q", code, message)
	}
	w.Header().Set("WWW-Authenticate", value)
	respondError(w, message, status)
}

// ExtractToken returns the bearer token, falling back to the access_token cookie set by login
func ExtractToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware admits requests carrying a valid operator access token and tags
// the request span with the operator
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				challenge(w, http.StatusUnauthorized, "", "unauthorized")
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				challenge(w, http.StatusUnauthorized, "invalid_token", "token expired")
				return
			case err != nil:
				challenge(w, http.StatusUnauthorized, "invalid_token", "invalid token")
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.String("enduser.id", claims.Username),
				attribute.String("enduser.role", claims.Role),
			)
			ctx := context.WithValue(r.Context(), OperatorContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits operators holding one of roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetOperatorFromContext(r.Context())
			if !ok {
				challenge(w, http.StatusUnauthorized, "", "unauthorized")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			challenge(w, http.StatusForbidden, "insufficient_scope", "forbidden")
		})
	}
}

func GetOperatorFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(OperatorContextKey).(*auth.Claims)
	return claims, ok
}
