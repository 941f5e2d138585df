package web

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/stvari/internal/auth"
	"github.com/erazemk/stvari/internal/store"
)

type webContextKey string

const webClaimsKey webContextKey = "webclaims"

// cookieName holds the session JWT.
const cookieName = "token"

// CookieAuthMiddleware validates the session cookie, checks token revocation
// and adds claims to the context. Failures redirect to the login page.
func CookieAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionClaims(r, secret, db)
			if err != nil {
				slog.Error("failed to check session", "error", err)
			}
			if claims == nil {
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), webClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionClaims returns the claims of a valid, unrevoked session cookie, or
// nil when there is none.
func sessionClaims(r *http.Request, secret string, db *sql.DB) (*auth.Claims, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	claims, err := auth.ValidateToken(secret, cookie.Value)
	if err != nil {
		return nil, nil
	}

	revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}
	return claims, nil
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}
