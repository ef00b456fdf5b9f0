package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/plataforma-eventos/server/internal/api/middleware"
	"github.com/plataforma-eventos/server/internal/api/problem"
	"github.com/plataforma-eventos/server/internal/domain/dashboard"
	"github.com/plataforma-eventos/server/internal/domain/users"
	"github.com/plataforma-eventos/server/internal/store"
)

type AdminHandler struct {
	Users     *users.Service
	Dashboard *dashboard.Service
	Store     *store.Store
	Env       string
}

func NewAdminHandler(userService *users.Service, dashboardService *dashboard.Service, st *store.Store, env string) *AdminHandler {
	return &AdminHandler{
		Users:     userService,
		Dashboard: dashboardService,
		Store:     st,
		Env:       env,
	}
}

// ListUsers handles GET /api/v1/admin/usuarios. Password hashes never leave
// the service layer. ?aprobados=true narrows to approved accounts, which is
// what the event assignment picker consumes.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var (
		items []store.User
		err   error
	)
	if r.URL.Query().Get("aprobados") == "true" {
		items, err = h.Users.ListApproved(r.Context())
	} else {
		items, err = h.Users.List(r.Context())
	}
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ApproveUser handles POST /api/v1/admin/usuarios/{id}/aprobar.
func (h *AdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	actor := middleware.SessionUser(r)
	user, err := h.Users.Approve(r.Context(), id, actor.Email)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "User not found", err, h.Env)
		case errors.Is(err, users.ErrAlreadyApproved):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "User already approved", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logs handles GET /api/v1/admin/logs with optional ?action= and ?actor=
// filters, newest entries first.
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Store == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var (
		entries []store.LogEntry
		err     error
	)
	action := strings.TrimSpace(r.URL.Query().Get("action"))
	actor := strings.TrimSpace(r.URL.Query().Get("actor"))
	switch {
	case action != "":
		entries, err = h.Store.LogsByAction(action)
	case actor != "":
		entries, err = h.Store.LogsByActor(actor)
	default:
		entries, err = h.Store.Logs()
	}
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	writeJSON(w, http.StatusOK, entries)
}

// DashboardMetrics handles GET /api/v1/admin/dashboard.
func (h *AdminHandler) DashboardMetrics(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Dashboard == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	metrics, err := h.Dashboard.Compute(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
