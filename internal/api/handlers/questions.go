package handlers

import (
	"errors"
	"net/http"

	"github.com/plataforma-eventos/server/internal/api/problem"
	"github.com/plataforma-eventos/server/internal/domain/questions"
)

type QuestionsHandler struct {
	Service *questions.Service
	Env     string
}

func NewQuestionsHandler(service *questions.Service, env string) *QuestionsHandler {
	return &QuestionsHandler{Service: service, Env: env}
}

type questionRequest struct {
	Nombre   string `json:"nombre"`
	Pregunta string `json:"pregunta" validate:"required"`
}

// Submit handles POST /api/v1/eventos/{id}/preguntas. Open to the public;
// the QR code on printed material points here.
func (h *QuestionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	pregunta, err := h.Service.Submit(r.Context(), id, req.Nombre, req.Pregunta)
	if err != nil {
		h.writeQuestionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pregunta)
}

// List handles GET /api/v1/eventos/{id}/preguntas, newest first.
func (h *QuestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	preguntas, err := h.Service.ListByEvent(r.Context(), id)
	if err != nil {
		h.writeQuestionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preguntas)
}

func (h *QuestionsHandler) writeQuestionError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr questions.ValidationError
	switch {
	case errors.Is(err, questions.ErrEventNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
	case errors.As(err, &validationErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
	}
}
