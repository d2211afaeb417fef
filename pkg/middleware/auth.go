package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fkhayef/ensamble/internal/identity"
	"github.com/fkhayef/ensamble/pkg/response"
)

// Claims are the access-token claims issued by the identity service
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates HS256 bearer tokens signed with secret and stores the
// identity in the request context. Requests without a valid token are
// rejected with 401.
func Auth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			// Extract token from "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return key, nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			if claims.Subject == "" {
				response.Unauthorized(w, "Token has no subject")
				return
			}

			ctx := identity.WithIdentity(r.Context(), identity.Identity{ID: claims.Subject, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TestUserMiddleware allows setting the identity via X-Test-User-ID and
// X-Test-User-Email headers (DEV ONLY). Requests without the header carry
// no identity, so flows behave as with an expired session.
func TestUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-Test-User-ID")
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := identity.WithIdentity(r.Context(), identity.Identity{
			ID:    userID,
			Email: r.Header.Get("X-Test-User-Email"),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
