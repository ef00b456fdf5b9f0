package handlers

import (
	"errors"
	"net/http"

	"github.com/plataforma-eventos/server/internal/api/middleware"
	"github.com/plataforma-eventos/server/internal/api/problem"
	"github.com/plataforma-eventos/server/internal/domain/events"
	"github.com/plataforma-eventos/server/internal/store"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type contactoRequest struct {
	Nombre   string `json:"nombre" validate:"required"`
	Telefono string `json:"telefono" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type autoridadRequest struct {
	Nombre string `json:"nombre" validate:"required"`
	Cargo  string `json:"cargo" validate:"required"`
}

type eventRequest struct {
	Sector           string             `json:"sector" validate:"required"`
	Categoria        string             `json:"categoria" validate:"required"`
	Titulo           string             `json:"titulo" validate:"required"`
	Descripcion      string             `json:"descripcion" validate:"required"`
	Contactos        []contactoRequest  `json:"contactos" validate:"required,min=1,dive"`
	Fecha            string             `json:"fecha" validate:"required"`
	HoraInicio       string             `json:"horaInicio" validate:"required"`
	HoraFin          string             `json:"horaFin" validate:"required"`
	Ubicacion        string             `json:"ubicacion" validate:"required"`
	NumeroConvocados int                `json:"numeroConvocados" validate:"gt=0"`
	Autoridades      []autoridadRequest `json:"autoridades" validate:"dive"`
	AsignadoA        string             `json:"asignadoA"`
}

func (req eventRequest) toParams() events.EventParams {
	contactos := make([]store.Contacto, 0, len(req.Contactos))
	for _, c := range req.Contactos {
		contactos = append(contactos, store.Contacto{
			Nombre:   c.Nombre,
			Telefono: c.Telefono,
			Email:    c.Email,
		})
	}
	autoridades := make([]store.Autoridad, 0, len(req.Autoridades))
	for _, a := range req.Autoridades {
		autoridades = append(autoridades, store.Autoridad{
			Nombre: a.Nombre,
			Cargo:  a.Cargo,
		})
	}
	return events.EventParams{
		Sector:           req.Sector,
		Categoria:        req.Categoria,
		Titulo:           req.Titulo,
		Descripcion:      req.Descripcion,
		Contactos:        contactos,
		Fecha:            req.Fecha,
		HoraInicio:       req.HoraInicio,
		HoraFin:          req.HoraFin,
		Ubicacion:        req.Ubicacion,
		NumeroConvocados: req.NumeroConvocados,
		Autoridades:      autoridades,
		AsignadoA:        req.AsignadoA,
	}
}

// writeEventError maps domain errors to problem responses shared by every
// event mutation.
func (h *EventsHandler) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr events.ValidationError
	switch {
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Insufficient permissions", err, h.Env)
	case errors.Is(err, events.ErrFinalized), errors.Is(err, events.ErrAlreadyFinalized):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Event is finalized", err, h.Env)
	case errors.Is(err, events.ErrReportIncomplete):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Report is incomplete", err, h.Env)
	case errors.As(err, &validationErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
	}
}

// List handles GET /api/v1/eventos.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /api/v1/eventos.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), middleware.SessionUser(r), req.toParams())
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// Get handles GET /api/v1/eventos/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Update handles PUT /api/v1/eventos/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Update(r.Context(), middleware.SessionUser(r), id, req.toParams())
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/v1/eventos/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), middleware.SessionUser(r), id); err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Finalize handles POST /api/v1/eventos/{id}/finalizar.
func (h *EventsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	event, err := h.Service.Finalize(r.Context(), middleware.SessionUser(r), id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// QR handles GET /api/v1/eventos/{id}/qr. The payload carries the PNG as a
// data URI so the frontend can drop it straight into an img tag.
func (h *EventsHandler) QR(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	code, err := h.Service.QuestionsQR(r.Context(), middleware.SessionUser(r), id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

// Public handles GET /api/v1/eventos/{id}/public without authentication.
func (h *EventsHandler) Public(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	event, err := h.Service.Public(r.Context(), id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
