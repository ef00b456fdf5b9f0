package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plataforma-eventos/server/internal/auth"
	"github.com/plataforma-eventos/server/internal/store"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sessions, err := auth.NewSessionManager("session-middleware-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sessions
}

func issueCookie(t *testing.T, sessions *auth.SessionManager, user store.User) *http.Cookie {
	t.Helper()
	token, err := sessions.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionUser(r) == nil {
			t.Error("session user missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	sessions := newSessionManager(t)

	cases := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{
			name:       "no cookie",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			cookie:     &http.Cookie{Name: auth.CookieName, Value: "not-a-token"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "approved collaborator",
			cookie: issueCookie(t, sessions, store.User{
				ID: "01HZU100000000000000000000", Email: "ana@eventos.com",
				Rol: "colaborador", Aprobado: true,
			}),
			wantStatus: http.StatusOK,
		},
		{
			// A valid signature is not enough; pending accounts stay out
			// even with a token in hand.
			name: "unapproved account with valid token",
			cookie: issueCookie(t, sessions, store.User{
				ID: "01HZU200000000000000000000", Email: "eva@eventos.com",
				Rol: "colaborador", Aprobado: false,
			}),
			wantStatus: http.StatusForbidden,
		},
	}

	handler := RequireAuth(sessions, "test")(echoUser(t))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/eventos", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	sessions := newSessionManager(t)

	cases := []struct {
		name       string
		user       store.User
		wantStatus int
	}{
		{
			name: "approved admin",
			user: store.User{
				ID: "01HZA100000000000000000000", Email: "admin@eventos.com",
				Rol: "admin", Aprobado: true,
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "approved collaborator",
			user: store.User{
				ID: "01HZA200000000000000000000", Email: "ana@eventos.com",
				Rol: "colaborador", Aprobado: true,
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "unapproved admin",
			user: store.User{
				ID: "01HZA300000000000000000000", Email: "ex@eventos.com",
				Rol: "admin", Aprobado: false,
			},
			wantStatus: http.StatusForbidden,
		},
	}

	handler := RequireAdmin(sessions, "test")(echoUser(t))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/usuarios", nil)
			req.AddCookie(issueCookie(t, sessions, tc.user))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
