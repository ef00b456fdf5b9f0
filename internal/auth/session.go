package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/plataforma-eventos/server/internal/store"
)

// CookieName is the session cookie. Its value is a signed JWT, not plain
// JSON: a client that edits the payload invalidates the signature, which
// closes the role-escalation hole a bare JSON cookie would leave open.
const CookieName = "session"

// SessionUser is the reduced user projection carried in the token. The
// password hash is deliberately never part of it.
type SessionUser struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Rol      string `json:"rol"`
	Aprobado bool   `json:"aprobado"`
}

type sessionClaims struct {
	User SessionUser `json:"user"`
	jwt.RegisteredClaims
}

var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionManager issues and validates signed session tokens. The cookie is
// the entire session state; there is no server-side session table.
type SessionManager struct {
	key    []byte
	expiry time.Duration
	issuer string
}

func NewSessionManager(masterSecret string, expiry time.Duration) (*SessionManager, error) {
	key, err := DeriveSessionKey([]byte(masterSecret))
	if err != nil {
		return nil, err
	}
	return &SessionManager{
		key:    key,
		expiry: expiry,
		issuer: "plataforma-eventos",
	}, nil
}

// Expiry returns the configured session lifetime.
func (m *SessionManager) Expiry() time.Duration {
	return m.expiry
}

// Issue signs a session token for the user.
func (m *SessionManager) Issue(user store.User) (string, error) {
	if user.ID == "" {
		return "", ErrInvalidToken
	}

	now := time.Now()
	claims := &sessionClaims{
		User: SessionUser{
			ID:       user.ID,
			Nombre:   user.Nombre,
			Apellido: user.Apellido,
			Email:    user.Email,
			Rol:      user.Rol,
			Aprobado: user.Aprobado,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// Validate parses and verifies a session token, returning the embedded user.
func (m *SessionManager) Validate(tokenString string) (*SessionUser, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims.User, nil
}

// FromRequest resolves the session from the request cookie. It fails open:
// a missing, corrupt, expired, or tampered cookie is "not logged in", never
// an error the caller has to handle.
func (m *SessionManager) FromRequest(r *http.Request) *SessionUser {
	cookie, err := r.Cookie(CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return nil
	}
	user, err := m.Validate(cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

// SetCookie writes the session cookie. The caller decides Secure, since only
// it knows whether TLS terminates here or at a proxy in front.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.expiry.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie deletes the session cookie.
func (m *SessionManager) ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
