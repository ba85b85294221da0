// Package middleware holds the chi middleware used by the API router.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/groundedgrowth/internal/api/ctxkeys"
	pkgauth "github.com/matiasleandrokruk/groundedgrowth/pkg/auth"
)

// TokenParser validates a session token. *pkgauth.TokenManager satisfies it.
type TokenParser interface {
	Parse(token string) (*pkgauth.Claims, error)
}

// Auth validates the Bearer JWT and injects ctxkeys.UserID and ctxkeys.Email.
//
// Flow:
//  1. Read "Authorization: Bearer <token>"
//  2. Missing or not Bearer → 401
//  3. Invalid or expired → 401
//  4. Inject claims and call next
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "Token de acceso requerido")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token inválido o expirado")
				return
			}

			ctx := ctxkeys.WithValue(r.Context(), ctxkeys.UserID, claims.UserID)
			ctx = ctxkeys.WithValue(ctx, ctxkeys.Email, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns "" when the header is missing, uses another
// scheme, or carries an empty token.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
