// Package audit records privileged and public actions into the logs
// collection. Writes are best-effort: a failed audit write is counted and
// logged at warn level, but never blocks the action it describes.
package audit

import (
	"github.com/plataforma-eventos/server/internal/metrics"
	"github.com/plataforma-eventos/server/internal/store"
	"github.com/rs/zerolog"
)

// Closed action enumeration. Anything else is a programming error, not a
// new action.
const (
	ActionCrearEvento      = "crear_evento"
	ActionEditarEvento     = "editar_evento"
	ActionEliminarEvento   = "eliminar_evento"
	ActionFinalizarEvento  = "finalizar_evento"
	ActionSubirInforme     = "subir_informe"
	ActionRegistrarUsuario = "registrar_usuario"
	ActionAprobarUsuario   = "aprobar_usuario"
	ActionPreguntaPublica  = "enviar_pregunta_publica"
)

// ActorPublico tags entries produced by the unauthenticated question form.
const ActorPublico = "público"

type Recorder struct {
	store  *store.Store
	logger zerolog.Logger
}

func NewRecorder(st *store.Store, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  st,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record persists an audit entry and mirrors it to the structured log.
func (r *Recorder) Record(actor, action, targetID string, meta map[string]string) {
	if r == nil || r.store == nil {
		return
	}

	entry := store.LogEntry{
		Actor:    actor,
		Action:   action,
		TargetID: targetID,
		Meta:     meta,
	}

	if _, err := r.store.CreateLog(entry); err != nil {
		metrics.AuditEntriesDropped.Inc()
		r.logger.Warn().
			Err(err).
			Str("action", action).
			Str("actor", actor).
			Str("target_id", targetID).
			Msg("audit entry dropped")
		return
	}

	event := r.logger.Info().
		Str("action", action).
		Str("actor", actor)
	if targetID != "" {
		event = event.Str("target_id", targetID)
	}
	for k, v := range meta {
		event = event.Str(k, v)
	}
	event.Msg("audit")
}
