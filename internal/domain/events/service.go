package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plataforma-eventos/server/internal/audit"
	"github.com/plataforma-eventos/server/internal/auth"
	"github.com/plataforma-eventos/server/internal/domain/ids"
	"github.com/plataforma-eventos/server/internal/qr"
	"github.com/plataforma-eventos/server/internal/store"
	"github.com/plataforma-eventos/server/internal/uploads"
	"github.com/rs/zerolog"
)

type Service struct {
	store    *store.Store
	uploads  *uploads.Manager
	recorder *audit.Recorder
	baseURL  string
	logger   zerolog.Logger
}

func NewService(st *store.Store, up *uploads.Manager, recorder *audit.Recorder, baseURL string, logger zerolog.Logger) *Service {
	return &Service{
		store:    st,
		uploads:  up,
		recorder: recorder,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

// EventParams carries the editable fields for both create and full update.
type EventParams struct {
	Sector           string
	Categoria        string
	Titulo           string
	Descripcion      string
	Contactos        []store.Contacto
	Fecha            string
	HoraInicio       string
	HoraFin          string
	Ubicacion        string
	NumeroConvocados int
	Autoridades      []store.Autoridad
	AsignadoA        string
}

func validateParams(p EventParams) error {
	required := []struct {
		field string
		value string
	}{
		{"sector", p.Sector},
		{"categoria", p.Categoria},
		{"titulo", p.Titulo},
		{"descripcion", p.Descripcion},
		{"fecha", p.Fecha},
		{"horaInicio", p.HoraInicio},
		{"horaFin", p.HoraFin},
		{"ubicacion", p.Ubicacion},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return ValidationError{Field: r.field, Message: "required"}
		}
	}
	if p.NumeroConvocados <= 0 {
		return ValidationError{Field: "numeroConvocados", Message: "must be positive"}
	}
	if len(p.Contactos) == 0 {
		return ValidationError{Field: "contactos", Message: "at least one contact required"}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]store.Event, error) {
	return s.store.Events()
}

func (s *Service) Get(ctx context.Context, id string) (*store.Event, error) {
	events, err := s.store.Events()
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create registers a new draft event owned by the actor.
func (s *Service) Create(ctx context.Context, actor *auth.SessionUser, params EventParams) (*store.Event, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	// Contacts and authorities come in without identifiers; mint them here
	// so the UI can address rows individually.
	for i := range params.Contactos {
		if params.Contactos[i].ID == "" {
			params.Contactos[i].ID = ids.MustNewULID()
		}
	}
	for i := range params.Autoridades {
		if params.Autoridades[i].ID == "" {
			params.Autoridades[i].ID = ids.MustNewULID()
		}
	}

	event, err := s.store.CreateEvent(store.Event{
		Sector:           params.Sector,
		Categoria:        params.Categoria,
		Titulo:           params.Titulo,
		Descripcion:      params.Descripcion,
		Contactos:        params.Contactos,
		Fecha:            params.Fecha,
		HoraInicio:       params.HoraInicio,
		HoraFin:          params.HoraFin,
		Ubicacion:        params.Ubicacion,
		NumeroConvocados: params.NumeroConvocados,
		Autoridades:      params.Autoridades,
		CreadoPor:        actor.ID,
		AsignadoA:        params.AsignadoA,
		Finalizado:       false,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.recorder.Record(actor.Email, audit.ActionCrearEvento, event.ID, map[string]string{
		"nombreEvento": event.Titulo,
	})
	return event, nil
}

// Update replaces the editable fields. Admins may edit any event,
// collaborators only their own; finalized events reject the mutation at
// the store layer no matter who asks.
func (s *Service) Update(ctx context.Context, actor *auth.SessionUser, id string, params EventParams) (*store.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.IsAdmin(actor.Rol) && event.CreadoPor != actor.ID {
		return nil, ErrForbidden
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	for i := range params.Contactos {
		if params.Contactos[i].ID == "" {
			params.Contactos[i].ID = ids.MustNewULID()
		}
	}
	for i := range params.Autoridades {
		if params.Autoridades[i].ID == "" {
			params.Autoridades[i].ID = ids.MustNewULID()
		}
	}

	updated, err := s.store.UpdateEvent(id, store.EventPatch{
		Sector:           &params.Sector,
		Categoria:        &params.Categoria,
		Titulo:           &params.Titulo,
		Descripcion:      &params.Descripcion,
		Contactos:        &params.Contactos,
		Fecha:            &params.Fecha,
		HoraInicio:       &params.HoraInicio,
		HoraFin:          &params.HoraFin,
		Ubicacion:        &params.Ubicacion,
		NumeroConvocados: &params.NumeroConvocados,
		Autoridades:      &params.Autoridades,
		AsignadoA:        &params.AsignadoA,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.recorder.Record(actor.Email, audit.ActionEditarEvento, updated.ID, map[string]string{
		"nombreEvento": updated.Titulo,
	})
	return updated, nil
}

// Delete hard-deletes a draft event. Finalized events are permanent.
func (s *Service) Delete(ctx context.Context, actor *auth.SessionUser, id string) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.IsAdmin(actor.Rol) && event.CreadoPor != actor.ID {
		return ErrForbidden
	}

	deleted, err := s.store.DeleteEvent(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.recorder.Record(actor.Email, audit.ActionEliminarEvento, event.ID, map[string]string{
		"nombreEvento": event.Titulo,
	})
	return nil
}

// ReportInput is an incoming informe: a summary plus buffered media files.
type ReportInput struct {
	Resumen  string
	Imagenes []uploads.File
	Videos   []uploads.File
}

// AttachReport stores report media and attaches the informe to the event.
// Only the creator may upload, and only before finalization.
func (s *Service) AttachReport(ctx context.Context, actor *auth.SessionUser, id string, input ReportInput) (*store.Informe, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreadoPor != actor.ID {
		return nil, ErrForbidden
	}
	if event.Finalizado {
		return nil, ErrFinalized
	}

	resumen := strings.TrimSpace(input.Resumen)
	if resumen == "" {
		return nil, ValidationError{Field: "resumen", Message: "required"}
	}
	if len(input.Imagenes) == 0 {
		return nil, ValidationError{Field: "imagenes", Message: "at least one image required"}
	}

	imagenPaths, videoPaths, err := s.uploads.SaveReport(id, input.Imagenes, input.Videos)
	if err != nil {
		return nil, err
	}

	informe := store.Informe{
		Resumen:  resumen,
		Imagenes: imagenPaths,
		Videos:   videoPaths,
		SubidoEn: time.Now().UTC(),
	}
	updated, err := s.store.UpdateEvent(id, store.EventPatch{Informe: &informe})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.recorder.Record(actor.Email, audit.ActionSubirInforme, event.ID, map[string]string{
		"nombreEvento": event.Titulo,
	})
	return updated.Informe, nil
}

// Finalize moves the event to its terminal state. Only the creator may
// finalize, and only with a complete report attached.
func (s *Service) Finalize(ctx context.Context, actor *auth.SessionUser, id string) (*store.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreadoPor != actor.ID {
		return nil, ErrForbidden
	}
	if event.Finalizado {
		return nil, ErrAlreadyFinalized
	}
	if event.Informe == nil || strings.TrimSpace(event.Informe.Resumen) == "" || len(event.Informe.Imagenes) == 0 {
		return nil, ErrReportIncomplete
	}

	finalizado := true
	updated, err := s.store.UpdateEvent(id, store.EventPatch{Finalizado: &finalizado})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.recorder.Record(actor.Email, audit.ActionFinalizarEvento, updated.ID, map[string]string{
		"nombreEvento": updated.Titulo,
	})
	return updated, nil
}

// QuestionsQR returns the QR code for the event's public question form,
// generating and caching it on first use. Creator or admin only.
func (s *Service) QuestionsQR(ctx context.Context, actor *auth.SessionUser, id string) (*store.QRCode, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.IsAdmin(actor.Rol) && event.CreadoPor != actor.ID {
		return nil, ErrForbidden
	}

	target := fmt.Sprintf("%s/evento/%s/preguntas", s.baseURL, id)
	if event.QRCode != nil && event.QRCode.URL == target {
		return event.QRCode, nil
	}

	data, err := qr.DataURI(target)
	if err != nil {
		return nil, err
	}
	code := store.QRCode{
		Data:       data,
		URL:        target,
		GeneradoEn: time.Now().UTC(),
	}

	// Finalized events cannot be mutated, so the cache write is skipped and
	// the freshly generated code is returned as-is.
	updated, err := s.store.UpdateEvent(id, store.EventPatch{QRCode: &code})
	if err != nil {
		if errors.Is(err, store.ErrEventFinalized) {
			return &code, nil
		}
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated.QRCode, nil
}

// PublicEvent is the unauthenticated projection of an event: enough to
// render the question form, nothing operational.
type PublicEvent struct {
	ID          string `json:"id"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Fecha       string `json:"fecha"`
	HoraInicio  string `json:"horaInicio"`
	Ubicacion   string `json:"ubicacion"`
	Sector      string `json:"sector"`
	Categoria   string `json:"categoria"`
}

func (s *Service) Public(ctx context.Context, id string) (*PublicEvent, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PublicEvent{
		ID:          event.ID,
		Titulo:      event.Titulo,
		Descripcion: event.Descripcion,
		Fecha:       event.Fecha,
		HoraInicio:  event.HoraInicio,
		Ubicacion:   event.Ubicacion,
		Sector:      event.Sector,
		Categoria:   event.Categoria,
	}, nil
}

// ReportFiles resolves the informe's media to filesystem paths for the ZIP
// download. Creator, assignee or admin only.
func (s *Service) ReportFiles(ctx context.Context, actor *auth.SessionUser, id string) (*store.Event, []string, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	canDownload := event.CreadoPor == actor.ID || event.AsignadoA == actor.ID || auth.IsAdmin(actor.Rol)
	if !canDownload {
		return nil, nil, ErrForbidden
	}
	if event.Informe == nil {
		return nil, nil, ErrNoReport
	}

	public := append(append([]string{}, event.Informe.Imagenes...), event.Informe.Videos...)
	paths := make([]string, 0, len(public))
	for _, p := range public {
		abs, err := s.uploads.Resolve(p)
		if err != nil {
			s.logger.Warn().Str("path", p).Err(err).Msg("skipping unresolvable report file")
			continue
		}
		paths = append(paths, abs)
	}
	return event, paths, nil
}
