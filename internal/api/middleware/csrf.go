package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFProtection protects the cookie-authenticated routes from cross-site
// request forgery. The session cookie is SameSite=Lax, which already blocks
// most cross-origin POSTs; this adds the double-submit token on top for
// browsers that do not enforce SameSite.
//
// Clients read the token from the X-CSRF-Token response header on any safe
// request and echo it back on state-changing ones.
func CSRFProtection(authKey []byte, secure bool) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	}

	protect := csrf.Protect(authKey, opts...)
	return func(next http.Handler) http.Handler {
		return protect(exposeCSRFToken(next))
	}
}

func exposeCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"type":"https://plataforma-eventos.app/problems/csrf-failure","title":"CSRF token validation failed","status":403}`))
}

// CSRFToken extracts the CSRF token from the request context.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}
