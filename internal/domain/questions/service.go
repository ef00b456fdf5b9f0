package questions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/plataforma-eventos/server/internal/audit"
	"github.com/plataforma-eventos/server/internal/store"
	"github.com/rs/zerolog"
)

const (
	// MaxPreguntaLen caps the question text.
	MaxPreguntaLen = 500
	// MaxNombreLen caps the optional submitter name.
	MaxNombreLen = 100
)

var ErrEventNotFound = errors.New("event not found")

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Service handles public question submission. Input is unauthenticated, so
// everything is stripped through a strict HTML sanitizer before storage.
type Service struct {
	store    *store.Store
	recorder *audit.Recorder
	policy   *bluemonday.Policy
	logger   zerolog.Logger
}

func NewService(st *store.Store, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		store:    st,
		recorder: recorder,
		policy:   bluemonday.StrictPolicy(),
		logger:   logger.With().Str("component", "questions").Logger(),
	}
}

// Submit records a public question against an existing event.
func (s *Service) Submit(ctx context.Context, eventID, nombre, pregunta string) (*store.Pregunta, error) {
	event, err := s.findEvent(eventID)
	if err != nil {
		return nil, err
	}

	pregunta = strings.TrimSpace(s.policy.Sanitize(pregunta))
	nombre = strings.TrimSpace(s.policy.Sanitize(nombre))

	if pregunta == "" {
		return nil, ValidationError{Field: "pregunta", Message: "required"}
	}
	if len([]rune(pregunta)) > MaxPreguntaLen {
		return nil, ValidationError{Field: "pregunta", Message: fmt.Sprintf("at most %d characters", MaxPreguntaLen)}
	}
	if len([]rune(nombre)) > MaxNombreLen {
		return nil, ValidationError{Field: "nombre", Message: fmt.Sprintf("at most %d characters", MaxNombreLen)}
	}

	created, err := s.store.CreatePregunta(store.Pregunta{
		EventID:  eventID,
		Nombre:   nombre,
		Pregunta: pregunta,
	})
	if err != nil {
		return nil, fmt.Errorf("create pregunta: %w", err)
	}

	s.recorder.Record(audit.ActorPublico, audit.ActionPreguntaPublica, eventID, map[string]string{
		"nombreEvento": event.Titulo,
	})
	return created, nil
}

// ListByEvent returns an event's questions, newest first.
func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]store.Pregunta, error) {
	if _, err := s.findEvent(eventID); err != nil {
		return nil, err
	}

	preguntas, err := s.store.PreguntasByEvent(eventID)
	if err != nil {
		return nil, err
	}
	sort.Slice(preguntas, func(i, j int) bool {
		return preguntas[i].CreatedAt.After(preguntas[j].CreatedAt)
	})
	return preguntas, nil
}

func (s *Service) findEvent(eventID string) (*store.Event, error) {
	events, err := s.store.Events()
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == eventID {
			return &events[i], nil
		}
	}
	return nil, ErrEventNotFound
}
