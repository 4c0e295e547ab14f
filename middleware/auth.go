package middleware

import (
	"context"
	"net/http"
	"strings"

	"onboarding-service/config"
	"onboarding-service/identity"
	"onboarding-service/models"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware verifies the identity-provider access token and attaches the
// resulting identity to the request context.
func AuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cfg.Auth.AccessCookieName)
			if token == "" {
				http.Error(w, "No token provided", http.StatusUnauthorized)
				return
			}

			claims, err := identity.ParseToken(token, cfg.Auth.AccessTokenSecret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ident := models.Identity{UID: claims.UID, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), ident)))
		})
	}
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(models.Identity)
	return ident, ok
}

func ContextWithIdentity(ctx context.Context, ident models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	return strings.TrimPrefix(authHeader, "Bearer ")
}
