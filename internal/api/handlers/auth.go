package handlers

import (
	"errors"
	"net/http"

	"github.com/plataforma-eventos/server/internal/api/middleware"
	"github.com/plataforma-eventos/server/internal/api/problem"
	"github.com/plataforma-eventos/server/internal/auth"
	"github.com/plataforma-eventos/server/internal/domain/users"
)

type AuthHandler struct {
	Users    *users.Service
	Sessions *auth.SessionManager
	Env      string
}

func NewAuthHandler(service *users.Service, sessions *auth.SessionManager, env string) *AuthHandler {
	return &AuthHandler{Users: service, Sessions: sessions, Env: env}
}

type registerRequest struct {
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Celular  string `json:"celular" validate:"required"`
	Sector   string `json:"sector" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/v1/auth/register. New accounts always start
// unapproved; an admin has to flip them before login works.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.Register(r.Context(), users.RegisterParams{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Email:    req.Email,
		Celular:  req.Celular,
		Sector:   req.Sector,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Email already registered", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login. On success the session travels
// back as an HttpOnly cookie; the body carries the user projection so the
// frontend can render without a second round trip.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil || h.Sessions == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	user, token, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidCredentials):
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid credentials", nil, h.Env)
		case errors.Is(err, users.ErrPendingApproval):
			problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Account pending approval", nil, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	h.Sessions.SetCookie(w, token, h.secureCookies(r))
	writeJSON(w, http.StatusOK, user)
}

// secureCookies decides the Secure attribute for session cookies. In
// production the server usually sits behind a TLS-terminating proxy, so
// r.TLS alone would leave cookies unprotected; the environment flag wins.
func (h *AuthHandler) secureCookies(r *http.Request) bool {
	return h.Env == "production" || r.TLS != nil
}

// Logout handles POST /api/v1/auth/logout. Clears the cookie and answers
// with JSON rather than a redirect; navigation is the frontend's job.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w, h.secureCookies(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session handles GET /api/v1/auth/session. Runs behind RequireAuth, so an
// invalid cookie never reaches here.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := middleware.SessionUser(r)
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
