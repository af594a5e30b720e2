package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/utils"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller taken from the access token
type Principal struct {
	UserID   uint
	AuthUUID string
	Email    string
	Role     string
}

// IsAdmin reports whether the caller holds the admin role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// FromContext returns the principal set by Auth, or nil
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// ParseToken validates an access token and extracts the principal
func ParseToken(token, secret string) (*Principal, error) {
	claims, err := utils.ValidateToken(token, secret)
	if err != nil {
		return nil, err
	}
	p := &Principal{}
	p.AuthUUID, _ = claims["sub"].(string)
	p.Email, _ = claims["email"].(string)
	p.Role, _ = claims["role"].(string)
	if id, ok := claims["id"].(float64); ok {
		p.UserID = uint(id)
	}
	return p, nil
}

// Auth verifies the bearer token and stores the principal in the request context
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				deny(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				deny(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			p, err := ParseToken(parts[1], secret)
			if err != nil {
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).IsAdmin() {
			deny(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
