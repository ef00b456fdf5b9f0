package events

import (
	"context"
	"strings"
	"testing"

	"github.com/plataforma-eventos/server/internal/audit"
	"github.com/plataforma-eventos/server/internal/auth"
	"github.com/plataforma-eventos/server/internal/store"
	"github.com/plataforma-eventos/server/internal/uploads"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = &auth.SessionUser{ID: "01HZADM0000000000000000000", Email: "admin@eventos.com", Rol: "admin", Aprobado: true}
	creator = &auth.SessionUser{ID: "01HZCRE0000000000000000000", Email: "juan@eventos.com", Rol: "colaborador", Aprobado: true}
	other   = &auth.SessionUser{ID: "01HZOTR0000000000000000000", Email: "maria@eventos.com", Rol: "colaborador", Aprobado: true}
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	manager, err := uploads.NewManager(t.TempDir())
	require.NoError(t, err)

	recorder := audit.NewRecorder(st, zerolog.Nop())
	svc := NewService(st, manager, recorder, "http://localhost:8080", zerolog.Nop())
	return svc, st
}

func validParams() EventParams {
	return EventParams{
		Sector:           "Educación",
		Categoria:        "Taller",
		Titulo:           "Taller de robótica",
		Descripcion:      "Introducción a la robótica educativa",
		Contactos:        []store.Contacto{{Nombre: "Ana", Telefono: "123"}},
		Fecha:            "2026-09-15",
		HoraInicio:       "10:00",
		HoraFin:          "12:00",
		Ubicacion:        "Centro Cultural",
		NumeroConvocados: 40,
	}
}

func validReport() ReportInput {
	return ReportInput{
		Resumen:  "Asistieron cuarenta personas.",
		Imagenes: []uploads.File{{Name: "foto.png", Data: []byte("png-bytes")}},
	}
}

func TestCreateEvent(t *testing.T) {
	svc, _ := newTestService(t)

	event, err := svc.Create(context.Background(), creator, validParams())
	require.NoError(t, err)

	assert.Equal(t, creator.ID, event.CreadoPor)
	assert.False(t, event.Finalizado)
	require.Len(t, event.Contactos, 1)
	assert.NotEmpty(t, event.Contactos[0].ID, "contact ids are minted on create")
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*EventParams)
		field  string
	}{
		{"missing titulo", func(p *EventParams) { p.Titulo = " " }, "titulo"},
		{"missing fecha", func(p *EventParams) { p.Fecha = "" }, "fecha"},
		{"zero convocados", func(p *EventParams) { p.NumeroConvocados = 0 }, "numeroConvocados"},
		{"no contacts", func(p *EventParams) { p.Contactos = nil }, "contactos"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)

			_, err := svc.Create(ctx, creator, params)
			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestUpdateEventOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, creator, validParams())
	require.NoError(t, err)

	_, err = svc.Update(ctx, other, event.ID, validParams())
	assert.ErrorIs(t, err, ErrForbidden, "a collaborator cannot edit someone else's event")

	params := validParams()
	params.Titulo = "Título corregido"
	updated, err := svc.Update(ctx, admin, event.ID, params)
	require.NoError(t, err, "admins edit any event")
	assert.Equal(t, "Título corregido", updated.Titulo)

	params.Titulo = "Otra vez"
	updated, err = svc.Update(ctx, creator, event.ID, params)
	require.NoError(t, err)
	assert.Equal(t, "Otra vez", updated.Titulo)
}

func TestDeleteEventOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, creator, validParams())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, other, event.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, creator, event.ID))

	_, err = svc.Get(ctx, event.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachReportRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, creator, validParams())
	require.NoError(t, err)

	_, err = svc.AttachReport(ctx, other, event.ID, validReport())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AttachReport(ctx, admin, event.ID, validReport())
	assert.ErrorIs(t, err, ErrForbidden, "even admins cannot upload another creator's report")

	noResumen := validReport()
	noResumen.Resumen = "  "
	_, err = svc.AttachReport(ctx, creator, event.ID, noResumen)
	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "resumen", vErr.Field)

	noImages := validReport()
	noImages.Imagenes = nil
	_, err = svc.AttachReport(ctx, creator, event.ID, noImages)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "imagenes", vErr.Field)

	informe, err := svc.AttachReport(ctx, creator, event.ID, validReport())
	require.NoError(t, err)
	require.Len(t, informe.Imagenes, 1)
	assert.True(t, strings.HasPrefix(informe.Imagenes[0], "/uploads/"+event.ID+"/"))
	assert.False(t, informe.SubidoEn.IsZero())
}

func TestFinalizeLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, creator, validParams())
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, creator, event.ID)
	assert.ErrorIs(t, err, ErrReportIncomplete, "no report yet")

	_, err = svc.AttachReport(ctx, creator, event.ID, validReport())
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, other, event.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	finalized, err := svc.Finalize(ctx, creator, event.ID)
	require.NoError(t, err)
	assert.True(t, finalized.Finalizado)

	_, err = svc.Finalize(ctx, creator, event.ID)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	// Terminal state: no edits, no report replacement, no deletion.
	_, err = svc.Update(ctx, admin, event.ID, validParams())
	assert.ErrorIs(t, err, ErrFinalized)

	_, err = svc.AttachReport(ctx, creator, event.ID, validReport())
	assert.ErrorIs(t, err, ErrFinalized)

	assert.ErrorIs(t, svc.Delete(ctx, admin, event.ID), ErrFinalized)
}

func TestQuestionsQRCaching(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, creator, validParams())
	require.NoError(t, err)

	_, err = svc.QuestionsQR(ctx, other, event.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	first, err := svc.QuestionsQR(ctx, creator, event.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Data, "data:image/png;base64,"))
	assert.Equal(t, "http://localhost:8080/evento/"+event.ID+"/preguntas", first.URL)

	second, err := svc.QuestionsQR(ctx, admin, event.ID)
	require.NoError(t, err)
	assert.Equal(t, first.GeneradoEn, second.GeneradoEn, "second call must hit the cache")
}

func TestQuestionsQRFinalizedEventSkipsCache(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, creator, validParams())
	require.NoError(t, err)
	_, err = svc.AttachReport(ctx, creator, event.ID, validReport())
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, creator, event.ID)
	require.NoError(t, err)

	code, err := svc.QuestionsQR(ctx, creator, event.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, code.Data)

	stored, err := svc.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.QRCode, "finalized events never persist the cache")
}

func TestReportFilesPermissions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	params := validParams()
	params.AsignadoA = other.ID
	event, err := svc.Create(ctx, creator, params)
	require.NoError(t, err)

	_, _, err = svc.ReportFiles(ctx, creator, event.ID)
	assert.ErrorIs(t, err, ErrNoReport)

	_, err = svc.AttachReport(ctx, creator, event.ID, validReport())
	require.NoError(t, err)

	stranger := &auth.SessionUser{ID: "01HZSTR0000000000000000000", Rol: "colaborador"}
	_, _, err = svc.ReportFiles(ctx, stranger, event.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	for _, actor := range []*auth.SessionUser{creator, other, admin} {
		_, paths, err := svc.ReportFiles(ctx, actor, event.ID)
		require.NoError(t, err)
		assert.Len(t, paths, 1)
	}
}

func TestPublicProjection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, creator, validParams())
	require.NoError(t, err)

	public, err := svc.Public(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, public.ID)
	assert.Equal(t, event.Titulo, public.Titulo)

	_, err = svc.Public(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}
